package season

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source yields raw season documents by slug.
type Source interface {
	Document(ctx context.Context, slug string) ([]byte, error)
	Slugs(ctx context.Context) ([]string, error)
}

// SplitSlug splits "category-season" into its two parts, lowercased.
func SplitSlug(slug string) (category, name string, err error) {
	parts := strings.Split(strings.ToLower(slug), "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return parts[0], parts[1], nil
}

// DirSource reads <dir>/<category>/<season>.yaml.
type DirSource struct {
	Dir string
}

func (s DirSource) Document(_ context.Context, slug string) ([]byte, error) {
	category, name, err := SplitSlug(slug)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, category, name+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("read season %s: %w", slug, err)
	}
	return data, nil
}

func (s DirSource) Slugs(_ context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*", "*.yaml"))
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(matches))
	for _, m := range matches {
		category := filepath.Base(filepath.Dir(m))
		name := strings.TrimSuffix(filepath.Base(m), ".yaml")
		slugs = append(slugs, category+"-"+name)
	}
	sort.Strings(slugs)
	return slugs, nil
}

// Chain consults each source in turn; the first one that has the season
// wins.
type Chain []Source

func (c Chain) Document(ctx context.Context, slug string) ([]byte, error) {
	for _, s := range c {
		data, err := s.Document(ctx, slug)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return data, err
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
}

func (c Chain) Slugs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range c {
		slugs, err := s.Slugs(ctx)
		if err != nil {
			return nil, err
		}
		for _, slug := range slugs {
			if !seen[slug] {
				seen[slug] = true
				out = append(out, slug)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Loader fetches and validates seasons.
type Loader struct {
	source Source
	parser *Parser
}

func NewLoader(source Source, parser *Parser) *Loader {
	return &Loader{source: source, parser: parser}
}

func (l *Loader) Load(ctx context.Context, slug string) (*Season, error) {
	data, err := l.source.Document(ctx, slug)
	if err != nil {
		return nil, err
	}
	return l.parser.Parse(slug, data)
}

func (l *Loader) Slugs(ctx context.Context) ([]string, error) {
	return l.source.Slugs(ctx)
}

// Parser exposes the validator so callers can check a document before
// storing it.
func (l *Loader) Parser() *Parser { return l.parser }
