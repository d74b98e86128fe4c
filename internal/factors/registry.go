package factors

import (
	"fmt"
	"time"
)

// Config is a typed factor configuration decoded from a season document.
type Config interface {
	Validate() error
}

// BuildContext carries values injected at load time rather than read from
// configuration.
type BuildContext struct {
	Now time.Time
}

// Constructor builds a leaf factor from its validated config.
type Constructor func(cfg Config, bc BuildContext) (Factor, error)

// CompositeConstructor builds a composite factor from its loaded children,
// keyed by child factor name.
type CompositeConstructor func(children map[string]Factor) (Factor, error)

// Descriptor is one registered implementation of a named factor. Leaf
// descriptors carry an algorithm tag, a config shape and New; composite
// descriptors carry only Compose.
type Descriptor struct {
	Name      string
	Algorithm string
	Method    string

	// DateRelative factors get BuildContext.Now populated.
	DateRelative bool

	NewConfig func() Config
	New       Constructor
	Compose   CompositeConstructor
}

func (d Descriptor) Composite() bool { return d.Compose != nil }

// Registry catalogues factor implementations. It is filled once during
// startup and only read afterwards, so it carries no lock.
type Registry struct {
	names           []string
	implementations map[string][]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{implementations: make(map[string][]Descriptor)}
}

// Register appends d to the implementations of d.Name.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("%w: descriptor name is required", ErrConfiguration)
	}
	switch {
	case d.New != nil && d.Compose != nil:
		return fmt.Errorf("%w: %s: descriptor is both leaf and composite", ErrConfiguration, d.Name)
	case d.Compose != nil:
		if d.Algorithm != "" || d.Method != "" {
			return fmt.Errorf("%w: %s: composite descriptors take no algorithm or method", ErrConfiguration, d.Name)
		}
	case d.New != nil:
		if d.Algorithm == "" {
			return fmt.Errorf("%w: %s: leaf descriptors need an algorithm", ErrConfiguration, d.Name)
		}
		if d.NewConfig == nil {
			return fmt.Errorf("%w: %s/%s: leaf descriptors need a config shape", ErrConfiguration, d.Name, d.Algorithm)
		}
	default:
		return fmt.Errorf("%w: %s: descriptor has no constructor", ErrConfiguration, d.Name)
	}

	if _, ok := r.implementations[d.Name]; !ok {
		r.names = append(r.names, d.Name)
	}
	r.implementations[d.Name] = append(r.implementations[d.Name], d)
	return nil
}

// MustRegister is Register for bootstrap code, where a bad descriptor is a
// programming error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Implementation returns the first descriptor for name whose algorithm
// matches and whose method is unset or matches. An empty method therefore
// selects the first registered implementation of that algorithm.
func (r *Registry) Implementation(name, algorithm, method string) (Descriptor, error) {
	impls, ok := r.implementations[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: factor %q not found", ErrUnknownImplementation, name)
	}
	for _, d := range impls {
		if d.Algorithm == algorithm && (d.Method == "" || d.Method == method) {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: no implementation for %q with algorithm %q and method %q",
		ErrUnknownImplementation, name, algorithm, method)
}

// Implementations returns every descriptor registered under name, in
// registration order.
func (r *Registry) Implementations(name string) []Descriptor {
	impls := r.implementations[name]
	out := make([]Descriptor, len(impls))
	copy(out, impls)
	return out
}

// CompositeImplementation returns the composite descriptor for name.
func (r *Registry) CompositeImplementation(name string) (Descriptor, error) {
	impls, ok := r.implementations[name]
	if !ok || len(impls) == 0 {
		return Descriptor{}, fmt.Errorf("%w: factor %q not found", ErrUnknownImplementation, name)
	}
	for _, d := range impls {
		if d.Composite() {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q has no composite implementation", ErrUnknownImplementation, name)
}

// Names lists registered factor names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
