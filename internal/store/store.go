package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Season struct {
	Slug      string    `json:"slug"`
	Document  []byte    `json:"-"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CalculationStatus string

const (
	CalculationSucceeded CalculationStatus = "succeeded"
	CalculationFailed    CalculationStatus = "failed"
)

// Calculation is the audit record of one cpu calculation.
type Calculation struct {
	ID         uuid.UUID              `json:"id"`
	RequestID  uuid.UUID              `json:"request_id"`
	SeasonSlug string                 `json:"season_slug"`
	EntityID   string                 `json:"entity_id"`
	Status     CalculationStatus      `json:"status"`
	CPU        string                 `json:"cpu,omitempty"`
	Result     map[string]interface{} `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Source     string                 `json:"source"`
	CreatedAt  time.Time              `json:"created_at"`
}

type CalculationFilter struct {
	SeasonSlug string
	EntityID   string
	Status     *CalculationStatus
	Limit      int
	Offset     int
}

type Store interface {
	GetSeason(ctx context.Context, slug string) (*Season, error)
	ListSeasons(ctx context.Context) ([]*Season, error)
	PutSeason(ctx context.Context, s *Season) error
	DeleteSeason(ctx context.Context, slug string) error

	CreateCalculation(ctx context.Context, c *Calculation) error
	ListCalculations(ctx context.Context, filter CalculationFilter) ([]*Calculation, error)

	Close() error
}
