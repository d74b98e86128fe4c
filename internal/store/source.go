package store

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/Pow2/internal/season"
)

// SeasonSource serves season documents kept in a Store.
type SeasonSource struct {
	Store Store
}

func (s SeasonSource) Document(ctx context.Context, slug string) ([]byte, error) {
	se, err := s.Store.GetSeason(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get season %s: %w", slug, err)
	}
	if se == nil {
		return nil, fmt.Errorf("%w: %s", season.ErrNotFound, slug)
	}
	return se.Document, nil
}

func (s SeasonSource) Slugs(ctx context.Context) ([]string, error) {
	seasons, err := s.Store.ListSeasons(ctx)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(seasons))
	for i, se := range seasons {
		slugs[i] = se.Slug
	}
	return slugs, nil
}
