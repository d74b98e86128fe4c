package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfig struct{ tag string }

func (stubConfig) Validate() error { return nil }

func leaf(name, algorithm, method, tag string) Descriptor {
	return Descriptor{
		Name:      name,
		Algorithm: algorithm,
		Method:    method,
		NewConfig: func() Config { return stubConfig{tag: tag} },
		New: func(Config, BuildContext) (Factor, error) {
			return NewIdentity(name, 2), nil
		},
	}
}

func configTag(t *testing.T, d Descriptor) string {
	t.Helper()
	cfg, ok := d.NewConfig().(stubConfig)
	require.True(t, ok)
	return cfg.tag
}

func TestRegistryFirstMatch(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(leaf("volume", AlgorithmLinear, "", "linear"))
	r.MustRegister(leaf("volume", AlgorithmNormalize, MethodLog, "log"))
	r.MustRegister(leaf("volume", AlgorithmNormalize, MethodLinear, "normalize-linear"))

	tests := []struct {
		algorithm, method, want string
	}{
		{AlgorithmLinear, "", "linear"},
		{AlgorithmLinear, "anything", "linear"},
		{AlgorithmNormalize, MethodLinear, "normalize-linear"},
		{AlgorithmNormalize, MethodLog, "log"},
	}
	for _, tt := range tests {
		t.Run(tt.algorithm+"/"+tt.method, func(t *testing.T) {
			d, err := r.Implementation("volume", tt.algorithm, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.want, configTag(t, d))
		})
	}

	t.Run("unmatched method", func(t *testing.T) {
		_, err := r.Implementation("volume", AlgorithmNormalize, "")
		assert.ErrorIs(t, err, ErrUnknownImplementation)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := r.Implementation("volume", AlgorithmThreshold, "")
		assert.ErrorIs(t, err, ErrUnknownImplementation)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := r.Implementation("nope", AlgorithmLinear, "")
		assert.ErrorIs(t, err, ErrUnknownImplementation)
	})
}

func TestRegistryUnsetMethodMatchesFirstRegistered(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(leaf("asset", AlgorithmNormalize, "", "first"))
	r.MustRegister(leaf("asset", AlgorithmNormalize, MethodLog, "second"))

	d, err := r.Implementation("asset", AlgorithmNormalize, MethodLog)
	require.NoError(t, err)
	assert.Equal(t, "first", configTag(t, d))
}

func TestRegistryListing(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(leaf("volume", AlgorithmLinear, "", "a"))
	r.MustRegister(leaf("rare", AlgorithmFixed, "", "b"))
	r.MustRegister(leaf("volume", AlgorithmNormalize, MethodLog, "c"))

	assert.Equal(t, []string{"volume", "rare"}, r.Names())
	impls := r.Implementations("volume")
	require.Len(t, impls, 2)
	assert.Equal(t, AlgorithmLinear, impls[0].Algorithm)
	assert.Equal(t, AlgorithmNormalize, impls[1].Algorithm)
	assert.Empty(t, r.Implementations("missing"))

	impls[0].Algorithm = "mutated"
	assert.Equal(t, AlgorithmLinear, r.Implementations("volume")[0].Algorithm)
}

func TestRegistryComposite(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(leaf("listing_stats", AlgorithmFixed, "", "leaf"))
	r.MustRegister(Descriptor{
		Name: "listing_stats",
		Compose: func(children map[string]Factor) (Factor, error) {
			return nil, nil
		},
	})

	d, err := r.CompositeImplementation("listing_stats")
	require.NoError(t, err)
	assert.True(t, d.Composite())

	_, err = r.CompositeImplementation("missing")
	assert.ErrorIs(t, err, ErrUnknownImplementation)

	r.MustRegister(leaf("rare", AlgorithmFixed, "", "leaf"))
	_, err = r.CompositeImplementation("rare")
	assert.ErrorIs(t, err, ErrUnknownImplementation)
}

func TestRegistryRejectsMalformedDescriptors(t *testing.T) {
	compose := func(map[string]Factor) (Factor, error) { return nil, nil }
	build := func(Config, BuildContext) (Factor, error) { return nil, nil }
	shape := func() Config { return stubConfig{} }

	tests := []struct {
		name string
		d    Descriptor
	}{
		{"no name", Descriptor{Algorithm: AlgorithmFixed, NewConfig: shape, New: build}},
		{"no constructor", Descriptor{Name: "x", Algorithm: AlgorithmFixed}},
		{"leaf and composite", Descriptor{Name: "x", Algorithm: AlgorithmFixed, NewConfig: shape, New: build, Compose: compose}},
		{"composite with algorithm", Descriptor{Name: "x", Algorithm: AlgorithmFixed, Compose: compose}},
		{"leaf without algorithm", Descriptor{Name: "x", NewConfig: shape, New: build}},
		{"leaf without config shape", Descriptor{Name: "x", Algorithm: AlgorithmFixed, New: build}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			assert.ErrorIs(t, r.Register(tt.d), ErrConfiguration)
			assert.Empty(t, r.Names())
		})
	}

	assert.Panics(t, func() { NewRegistry().MustRegister(Descriptor{}) })
}
