// Package cpu multiplies a season's factor weights into a base compute
// power.
package cpu

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// Result is one calculation with the contribution of every factor.
type Result struct {
	CPU           decimal.Decimal
	FactorWeights map[string]factors.WeightResult
	// Order is the order weights were multiplied in.
	Order []string
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CPU           string                          `json:"cpu"`
		FactorWeights map[string]factors.WeightResult `json:"factor_weights"`
		Order         []string                        `json:"order"`
	}{factors.FormatDecimal(r.CPU), r.FactorWeights, r.Order})
}

// Calculator holds an ordered set of factor instances. Factors may carry
// per-calculation state, so a Calculator belongs to a single request.
type Calculator struct {
	base     decimal.Decimal
	registry *factors.Registry
	now      time.Time
	logger   *slog.Logger

	order   []string
	factors map[string]factors.Factor
}

// New returns an empty calculator. now is injected into date-relative
// factors; a zero value means time.Now at construction.
func New(base decimal.Decimal, registry *factors.Registry, now time.Time, logger *slog.Logger) *Calculator {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		base:     base,
		registry: registry,
		now:      now,
		logger:   logger,
		factors:  make(map[string]factors.Factor),
	}
}

func (c *Calculator) Base() decimal.Decimal { return c.base }
func (c *Calculator) Now() time.Time        { return c.now }

// LoadFactors instantiates every node in order. Nodes with children become
// composites built from their loaded children.
func (c *Calculator) LoadFactors(nodes []factors.Node) error {
	for _, n := range nodes {
		var (
			f   factors.Factor
			err error
		)
		if n.IsComposite() {
			f, err = c.loadComposite(n)
		} else {
			f, err = c.loadLeaf(n)
		}
		if err != nil {
			return fmt.Errorf("load factor %s: %w", n.Name, err)
		}
		c.AddFactor(f)
	}
	c.logger.Debug("factors loaded", "factors", c.order)
	return nil
}

func (c *Calculator) loadLeaf(n factors.Node) (factors.Factor, error) {
	desc, err := c.registry.Implementation(n.Name, n.Algorithm, n.Method)
	if err != nil {
		return nil, err
	}
	cfg := n.Config
	if cfg == nil {
		cfg = desc.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var bc factors.BuildContext
	if desc.DateRelative {
		bc.Now = c.now
	}
	return desc.New(cfg, bc)
}

func (c *Calculator) loadComposite(n factors.Node) (factors.Factor, error) {
	children := make(map[string]factors.Factor, len(n.Children))
	for _, child := range n.Children {
		if child.IsComposite() {
			return nil, fmt.Errorf("%w: nested composite %q", factors.ErrConfiguration, child.Name)
		}
		f, err := c.loadLeaf(child)
		if err != nil {
			return nil, fmt.Errorf("child %s: %w", child.Name, err)
		}
		if _, dup := children[f.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate child %q", factors.ErrConfiguration, f.Name())
		}
		children[f.Name()] = f
	}
	desc, err := c.registry.CompositeImplementation(n.Name)
	if err != nil {
		return nil, err
	}
	return desc.Compose(children)
}

// AddFactor appends f, or replaces the factor of the same name in place.
func (c *Calculator) AddFactor(f factors.Factor) {
	name := f.Name()
	if _, ok := c.factors[name]; !ok {
		c.order = append(c.order, name)
	}
	c.factors[name] = f
}

// RemoveFactor drops the named factor. Unknown names are ignored.
func (c *Calculator) RemoveFactor(name string) {
	if _, ok := c.factors[name]; !ok {
		return
	}
	delete(c.factors, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Calculator) Factor(name string) (factors.Factor, bool) {
	f, ok := c.factors[name]
	return f, ok
}

// Names returns factor names in evaluation order.
func (c *Calculator) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Calculate evaluates every factor against inputs[name], which must be an
// argument bundle, and multiplies the weights into the base in order.
func (c *Calculator) Calculate(inputs map[string]any) (Result, error) {
	res := Result{
		CPU:           c.base,
		FactorWeights: make(map[string]factors.WeightResult, len(c.order)),
		Order:         c.Names(),
	}
	for _, name := range c.order {
		raw, ok := inputs[name]
		if !ok {
			return Result{}, fmt.Errorf("%w: no input for factor %q", factors.ErrInvalidInput, name)
		}
		args, err := bundle(raw)
		if err != nil {
			return Result{}, fmt.Errorf("factor %s: %w", name, err)
		}
		w, err := c.factors[name].Weight(args)
		if err != nil {
			return Result{}, fmt.Errorf("factor %s: %w", name, err)
		}
		res.FactorWeights[name] = w
		res.CPU = res.CPU.Mul(w.Weight)
	}
	c.logger.Debug("cpu calculated", "cpu", res.CPU.String(), "factors", len(res.Order))
	return res, nil
}

func bundle(v any) (factors.Args, error) {
	switch b := v.(type) {
	case factors.Args:
		return b, nil
	case map[string]any:
		return factors.Args(b), nil
	}
	return nil, fmt.Errorf("%w: input must be an argument bundle, got %T", factors.ErrInvalidInput, v)
}
