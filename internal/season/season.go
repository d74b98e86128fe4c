// Package season loads season documents: which collections a season
// covers, its schedule, and the cpu base and factor tree used to score its
// tokens.
package season

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
	"github.com/MikeSquared-Agency/Pow2/internal/factors/catalog"
)

var (
	ErrNotFound    = errors.New("season not found")
	ErrInvalidSlug = errors.New("invalid season slug")
)

// Document mirrors the season YAML. Sections this service does not use
// (diamond, combination) are skipped by the decoder.
type Document struct {
	Collection Collection `yaml:"collection" json:"collection"`
	Category   string     `yaml:"category" json:"category"`
	Image      string     `yaml:"image" json:"image"`
	Season     Meta       `yaml:"season" json:"season"`
	CPU        CPUSection `yaml:"cpu" json:"cpu"`
}

type Collection struct {
	Slugs []string `yaml:"slugs" json:"slugs"`
}

type Meta struct {
	Slug                      string          `yaml:"slug" json:"slug"`
	Title                     string          `yaml:"title" json:"title"`
	StartAt                   string          `yaml:"start_at" json:"start_at"`
	EpochHours                int             `yaml:"epoch_hours" json:"epoch_hours"`
	MaxEpoch                  int             `yaml:"max_epoch" json:"max_epoch"`
	Priority                  int             `yaml:"priority" json:"priority"`
	PerEpochDiamonds          int64           `yaml:"per_epoch_diamonds" json:"per_epoch_diamonds"`
	InviterDiamondRewardRatio decimal.Decimal `yaml:"inviter_diamond_reward_ratio" json:"inviter_diamond_reward_ratio"`
}

type CPUSection struct {
	Base    decimal.Decimal `yaml:"base" json:"base"`
	Factors []FactorSpec    `yaml:"factors" json:"factors"`
}

// FactorSpec is one raw factor entry. Config stays undecoded until the
// registry says which typed shape it has.
type FactorSpec struct {
	Name     string       `yaml:"name" json:"name"`
	Priority int          `yaml:"priority" json:"priority"`
	Config   yaml.Node    `yaml:"config" json:"-"`
	Children []FactorSpec `yaml:"children" json:"children,omitempty"`
}

// Season is a validated document.
type Season struct {
	Slug       string
	Category   string
	Image      string
	Collection Collection
	Meta       Meta
	StartAt    time.Time
	Base       decimal.Decimal
	Factors    []factors.Node
}

// EpochAt returns the 1-based epoch containing t, or 0 before the season
// starts.
func (s *Season) EpochAt(t time.Time) int {
	if s.Meta.EpochHours <= 0 || t.Before(s.StartAt) {
		return 0
	}
	return int(t.Sub(s.StartAt)/(time.Duration(s.Meta.EpochHours)*time.Hour)) + 1
}

// Active reports whether t falls inside the season's epochs.
func (s *Season) Active(t time.Time) bool {
	e := s.EpochAt(t)
	return e > 0 && (s.Meta.MaxEpoch <= 0 || e <= s.Meta.MaxEpoch)
}

// Parser validates documents against a registry.
type Parser struct {
	registry *factors.Registry
	tzHours  int
}

// NewParser returns a parser; zone-less season timestamps are read at
// tzHours from UTC.
func NewParser(registry *factors.Registry, tzHours int) *Parser {
	return &Parser{registry: registry, tzHours: tzHours}
}

func (p *Parser) Parse(slug string, data []byte) (*Season, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode season %s: %v", factors.ErrConfiguration, slug, err)
	}
	return p.Validate(slug, &doc)
}

// Validate resolves every factor entry against the registry and decodes
// its config into the registered shape.
func (p *Parser) Validate(slug string, doc *Document) (*Season, error) {
	if len(doc.Collection.Slugs) == 0 {
		return nil, fmt.Errorf("%w: season %s: collection slugs are required", factors.ErrConfiguration, slug)
	}
	if doc.Season.Slug == "" {
		return nil, fmt.Errorf("%w: season %s: season slug is required", factors.ErrConfiguration, slug)
	}
	var start time.Time
	if doc.Season.StartAt != "" {
		loc := time.FixedZone("season", p.tzHours*3600)
		t, err := catalog.ParseTime(doc.Season.StartAt, loc)
		if err != nil {
			return nil, fmt.Errorf("season %s: start_at: %w", slug, err)
		}
		start = t
	}
	if !doc.CPU.Base.IsPositive() {
		return nil, fmt.Errorf("%w: season %s: cpu base must be positive", factors.ErrConfiguration, slug)
	}

	nodes := make([]factors.Node, 0, len(doc.CPU.Factors))
	seen := make(map[string]bool, len(doc.CPU.Factors))
	for _, spec := range doc.CPU.Factors {
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: season %s: factor %q configured twice", factors.ErrConfiguration, slug, spec.Name)
		}
		seen[spec.Name] = true
		n, err := p.node(spec)
		if err != nil {
			return nil, fmt.Errorf("season %s: %w", slug, err)
		}
		nodes = append(nodes, n)
	}

	return &Season{
		Slug:       slug,
		Category:   doc.Category,
		Image:      doc.Image,
		Collection: doc.Collection,
		Meta:       doc.Season,
		StartAt:    start,
		Base:       doc.CPU.Base,
		Factors:    nodes,
	}, nil
}

// tags are the administrative keys of a factor config.
type tags struct {
	Algorithm string `yaml:"algorithm"`
	Method    string `yaml:"method"`
}

func (p *Parser) node(spec FactorSpec) (factors.Node, error) {
	if spec.Name == "" {
		return factors.Node{}, fmt.Errorf("%w: factor name is required", factors.ErrConfiguration)
	}
	n := factors.Node{Name: spec.Name, Priority: spec.Priority}

	if len(spec.Children) > 0 {
		if _, err := p.registry.CompositeImplementation(spec.Name); err != nil {
			return factors.Node{}, err
		}
		for _, child := range spec.Children {
			c, err := p.node(child)
			if err != nil {
				return factors.Node{}, fmt.Errorf("%s: %w", spec.Name, err)
			}
			n.Children = append(n.Children, c)
		}
		return n, nil
	}

	if spec.Config.Kind == 0 {
		return factors.Node{}, fmt.Errorf("%w: factor %s: config is required", factors.ErrConfiguration, spec.Name)
	}
	var t tags
	if err := spec.Config.Decode(&t); err != nil {
		return factors.Node{}, fmt.Errorf("%w: factor %s: %v", factors.ErrConfiguration, spec.Name, err)
	}
	desc, err := p.registry.Implementation(spec.Name, t.Algorithm, t.Method)
	if err != nil {
		return factors.Node{}, err
	}
	cfg := desc.NewConfig()
	if err := spec.Config.Decode(cfg); err != nil {
		return factors.Node{}, fmt.Errorf("%w: factor %s config: %v", factors.ErrConfiguration, spec.Name, err)
	}
	if err := cfg.Validate(); err != nil {
		return factors.Node{}, fmt.Errorf("factor %s: %w", spec.Name, err)
	}
	n.Algorithm, n.Method, n.Config = t.Algorithm, t.Method, cfg
	return n, nil
}
