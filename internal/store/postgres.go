package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the tables the service needs if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pow2_seasons (
			slug       TEXT PRIMARY KEY,
			document   TEXT NOT NULL,
			updated_by TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS pow2_calculations (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			request_id  UUID NOT NULL,
			season_slug TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			status      TEXT NOT NULL,
			cpu         NUMERIC,
			result      JSONB,
			error       TEXT,
			source      TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS pow2_calculations_season_entity
			ON pow2_calculations (season_slug, entity_id, created_at DESC);`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSeason(ctx context.Context, slug string) (*Season, error) {
	se := &Season{}
	var document string
	var updatedBy sql.NullString
	err := s.pool.QueryRow(ctx, `
		SELECT slug, document, updated_by, created_at, updated_at
		FROM pow2_seasons WHERE slug = $1`, slug,
	).Scan(&se.Slug, &document, &updatedBy, &se.CreatedAt, &se.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	se.Document = []byte(document)
	if updatedBy.Valid {
		se.UpdatedBy = updatedBy.String
	}
	return se, nil
}

func (s *PostgresStore) ListSeasons(ctx context.Context) ([]*Season, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slug, updated_by, created_at, updated_at
		FROM pow2_seasons ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []*Season
	for rows.Next() {
		se := &Season{}
		var updatedBy sql.NullString
		if err := rows.Scan(&se.Slug, &updatedBy, &se.CreatedAt, &se.UpdatedAt); err != nil {
			return nil, err
		}
		if updatedBy.Valid {
			se.UpdatedBy = updatedBy.String
		}
		seasons = append(seasons, se)
	}
	return seasons, rows.Err()
}

func (s *PostgresStore) PutSeason(ctx context.Context, se *Season) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO pow2_seasons (slug, document, updated_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET
			document = EXCLUDED.document,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		RETURNING created_at, updated_at`,
		se.Slug, string(se.Document), se.UpdatedBy,
	).Scan(&se.CreatedAt, &se.UpdatedAt)
}

func (s *PostgresStore) DeleteSeason(ctx context.Context, slug string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM pow2_seasons WHERE slug = $1`, slug)
	return err
}

const calculationColumns = `id, request_id, season_slug, entity_id, status,
	cpu::text, result, error, source, created_at`

func (s *PostgresStore) CreateCalculation(ctx context.Context, c *Calculation) error {
	resultJSON, _ := json.Marshal(c.Result)
	var cpu *string
	if c.CPU != "" {
		cpu = &c.CPU
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO pow2_calculations (request_id, season_slug, entity_id, status, cpu, result, error, source)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8)
		RETURNING id, created_at`,
		c.RequestID, c.SeasonSlug, c.EntityID, c.Status, cpu, resultJSON, c.Error, c.Source,
	).Scan(&c.ID, &c.CreatedAt)
}

func (s *PostgresStore) ListCalculations(ctx context.Context, filter CalculationFilter) ([]*Calculation, error) {
	query := `SELECT ` + calculationColumns + ` FROM pow2_calculations WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.SeasonSlug != "" {
		n++
		query += fmt.Sprintf(" AND season_slug = $%d", n)
		args = append(args, filter.SeasonSlug)
	}
	if filter.EntityID != "" {
		n++
		query += fmt.Sprintf(" AND entity_id = $%d", n)
		args = append(args, filter.EntityID)
	}
	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCalculations(rows)
}

func scanCalculations(rows pgx.Rows) ([]*Calculation, error) {
	var out []*Calculation
	for rows.Next() {
		c := &Calculation{}
		var cpu, calcError sql.NullString
		var resultJSON []byte
		if err := rows.Scan(
			&c.ID, &c.RequestID, &c.SeasonSlug, &c.EntityID, &c.Status,
			&cpu, &resultJSON, &calcError, &c.Source, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if cpu.Valid {
			c.CPU = cpu.String
		}
		if calcError.Valid {
			c.Error = calcError.String
		}
		if resultJSON != nil {
			_ = json.Unmarshal(resultJSON, &c.Result)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
