package factors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Binding maps a child's argument names to the composite argument names
// they are read from.
type Binding map[string]string

func (b Binding) apply(args Args) (Args, error) {
	out := make(Args, len(b))
	for childKey, key := range b {
		v, ok := args[key]
		if !ok {
			return nil, missingArg(key)
		}
		out[childKey] = v
	}
	return out, nil
}

// Child is one input of a composite factor.
type Child struct {
	Factor  Factor
	Binding Binding
}

// Selector picks, by name, the child whose result the composite adopts. It
// must depend only on the results it is given.
type Selector func(children map[string]WeightResult) (string, error)

// Composite evaluates every child and adopts the value and weight of the
// one chosen by its selector. All child results are kept for audit.
type Composite struct {
	name     string
	children []Child
	selectFn Selector
}

func NewComposite(name string, children []Child, sel Selector) (*Composite, error) {
	if len(children) < 2 {
		return nil, fmt.Errorf("%w: %s: composite needs at least two children", ErrConfiguration, name)
	}
	if sel == nil {
		return nil, fmt.Errorf("%w: %s: selector is required", ErrConfiguration, name)
	}
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if c.Factor == nil {
			return nil, fmt.Errorf("%w: %s: nil child factor", ErrConfiguration, name)
		}
		if seen[c.Factor.Name()] {
			return nil, fmt.Errorf("%w: %s: duplicate child %q", ErrConfiguration, name, c.Factor.Name())
		}
		seen[c.Factor.Name()] = true
	}
	return &Composite{name: name, children: children, selectFn: sel}, nil
}

func (c *Composite) Name() string { return c.name }

// Children returns the child factors in evaluation order.
func (c *Composite) Children() []Factor {
	out := make([]Factor, len(c.children))
	for i, ch := range c.children {
		out[i] = ch.Factor
	}
	return out
}

func (c *Composite) Weight(args Args) (WeightResult, error) {
	results := make(map[string]WeightResult, len(c.children))
	for _, ch := range c.children {
		childArgs, err := ch.Binding.apply(args)
		if err != nil {
			return WeightResult{}, fmt.Errorf("%s: %w", c.name, err)
		}
		r, err := ch.Factor.Weight(childArgs)
		if err != nil {
			return WeightResult{}, fmt.Errorf("%s: %s: %w", c.name, ch.Factor.Name(), err)
		}
		results[ch.Factor.Name()] = r
	}

	selected, err := c.selectFn(results)
	if err != nil {
		return WeightResult{}, fmt.Errorf("%s: %w", c.name, err)
	}
	chosen, ok := results[selected]
	if !ok {
		return WeightResult{}, fmt.Errorf("%w: %s: selector chose unknown child %q", ErrConfiguration, c.name, selected)
	}
	return WeightResult{Value: chosen.Value, Weight: chosen.Weight, Children: results}, nil
}

// PreferBelow selects primary while its weight is under limit and fallback
// otherwise.
func PreferBelow(primary, fallback string, limit decimal.Decimal) Selector {
	return func(children map[string]WeightResult) (string, error) {
		p, ok := children[primary]
		if !ok {
			return "", fmt.Errorf("%w: missing child result %q", ErrInvalidInput, primary)
		}
		if p.Weight.LessThan(limit) {
			return primary, nil
		}
		if _, ok := children[fallback]; !ok {
			return "", fmt.Errorf("%w: missing child result %q", ErrInvalidInput, fallback)
		}
		return fallback, nil
	}
}
