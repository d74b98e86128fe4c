package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Pow2/internal/cpu"
	"github.com/MikeSquared-Agency/Pow2/internal/factors"
	"github.com/MikeSquared-Agency/Pow2/internal/factors/catalog"
	"github.com/MikeSquared-Agency/Pow2/internal/metrics"
	"github.com/MikeSquared-Agency/Pow2/internal/season"
	"github.com/MikeSquared-Agency/Pow2/internal/store"
)

// Entity is one thing to score: an argument bundle per configured factor.
type Entity struct {
	ID     string         `json:"id"`
	Inputs map[string]any `json:"inputs"`
}

// Request scores entities of one season against a single "now". Domains
// are loaded into the named normalize factors and RareBalances (one entry
// per holder) into the slot factor before any entity is scored.
type Request struct {
	RequestID    string               `json:"request_id,omitempty"`
	Season       string               `json:"season"`
	Now          *time.Time           `json:"now,omitempty"`
	Domains      map[string][]float64 `json:"domains,omitempty"`
	RareBalances []map[int64][]int64  `json:"rare_balances,omitempty"`
	Entities     []Entity             `json:"entities"`
}

type EntityResult struct {
	ID     string      `json:"id"`
	Result *cpu.Result `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Kind   string      `json:"kind,omitempty"`

	err error
}

// Err returns the calculation error, if any.
func (r EntityResult) Err() error { return r.err }

type Response struct {
	RequestID string         `json:"request_id"`
	Season    string         `json:"season"`
	Now       time.Time      `json:"now"`
	Factors   []string       `json:"factors"`
	Results   []EntityResult `json:"results"`
	Failed    int            `json:"failed"`
}

// DecodeRequest parses a JSON request. Input numbers stay json.Number so
// decimals reach the factors exactly as sent.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: decode request: %v", factors.ErrInvalidInput, err)
	}
	return req, nil
}

// Source labels where a request came from in the calculation audit log.
const (
	SourceAPI    = "api"
	SourceHermes = "hermes"
	SourceCLI    = "cli"
)

type Options struct {
	MaxBatchSize int
	// Store, when set, receives an audit row per entity.
	Store  store.Store
	Record bool
}

// Engine runs calculation requests. Each request gets its own calculator
// so factor state never leaks between requests.
type Engine struct {
	seasons  *season.Loader
	registry *factors.Registry
	metrics  *metrics.Metrics
	opts     Options
	logger   *slog.Logger
	clock    func() time.Time
}

func New(seasons *season.Loader, registry *factors.Registry, m *metrics.Metrics, opts Options, logger *slog.Logger) *Engine {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 5000
	}
	return &Engine{
		seasons:  seasons,
		registry: registry,
		metrics:  m,
		opts:     opts,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) Registry() *factors.Registry { return e.registry }
func (e *Engine) Seasons() *season.Loader     { return e.seasons }

// Calculate runs req. Season, factor loading and domain errors fail the
// whole request; per-entity errors are reported in the entity's result.
func (e *Engine) Calculate(ctx context.Context, req Request, source string) (*Response, error) {
	start := time.Now()
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if len(req.Entities) == 0 {
		return nil, fmt.Errorf("%w: no entities to calculate", factors.ErrInvalidInput)
	}
	if len(req.Entities) > e.opts.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d entities exceeds the batch limit of %d",
			factors.ErrInvalidInput, len(req.Entities), e.opts.MaxBatchSize)
	}

	calc, se, err := e.Prepare(ctx, req)
	if err != nil {
		e.recordFailure(req.Season, err)
		return nil, err
	}

	resp := &Response{
		RequestID: req.RequestID,
		Season:    se.Slug,
		Now:       calc.Now(),
		Factors:   calc.Names(),
		Results:   make([]EntityResult, 0, len(req.Entities)),
	}
	for _, ent := range req.Entities {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("calculate %s: %w", req.RequestID, err)
		}
		er := EntityResult{ID: ent.ID}
		res, err := calc.Calculate(ent.Inputs)
		if err != nil {
			er.err, er.Error, er.Kind = err, err.Error(), Kind(err)
			resp.Failed++
			e.recordFailure(se.Slug, err)
		} else {
			er.Result = &res
			e.metricsOr(func(m *metrics.Metrics) { m.RecordCalculation(se.Slug, "ok") })
		}
		resp.Results = append(resp.Results, er)
		e.audit(ctx, req.RequestID, se.Slug, source, er)
	}

	kind := "single"
	if len(req.Entities) > 1 {
		kind = "batch"
	}
	e.metricsOr(func(m *metrics.Metrics) { m.ObserveRequest(se.Slug, kind, time.Since(start).Seconds()) })
	e.logger.Info("cpu request calculated",
		"request_id", req.RequestID,
		"season", se.Slug,
		"entities", len(req.Entities),
		"failed", resp.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// Prepare resolves the season and returns a loaded calculator with the
// request's domains and balances applied.
func (e *Engine) Prepare(ctx context.Context, req Request) (*cpu.Calculator, *season.Season, error) {
	se, err := e.seasons.Load(ctx, req.Season)
	if err != nil {
		return nil, nil, err
	}
	now := e.clock()
	if req.Now != nil && !req.Now.IsZero() {
		now = *req.Now
	}
	calc := cpu.New(se.Base, e.registry, now, e.logger.With("season", se.Slug))
	if err := calc.LoadFactors(se.Factors); err != nil {
		return nil, nil, fmt.Errorf("season %s: %w", se.Slug, err)
	}
	if err := e.loadDomains(calc, req.Domains); err != nil {
		return nil, nil, err
	}
	if err := loadBalances(calc, req.RareBalances); err != nil {
		return nil, nil, err
	}
	return calc, se, nil
}

func (e *Engine) loadDomains(calc *cpu.Calculator, domains map[string][]float64) error {
	for name, values := range domains {
		f, ok := calc.Factor(name)
		if !ok {
			return fmt.Errorf("%w: domain given for unconfigured factor %q", factors.ErrInvalidInput, name)
		}
		dl, ok := f.(catalog.DomainLoader)
		if !ok {
			return fmt.Errorf("%w: factor %q does not take a domain", factors.ErrInvalidInput, name)
		}
		if err := dl.LoadDomain(values); err != nil {
			e.metricsOr(func(m *metrics.Metrics) { m.RecordDomainLoad(name, Kind(err)) })
			return fmt.Errorf("load domain %s: %w", name, err)
		}
		e.metricsOr(func(m *metrics.Metrics) { m.RecordDomainLoad(name, "ok") })
	}
	return nil
}

func loadBalances(calc *cpu.Calculator, balances []map[int64][]int64) error {
	if len(balances) == 0 {
		return nil
	}
	f, ok := calc.Factor(catalog.NameSlot)
	if !ok {
		return fmt.Errorf("%w: rare balances given but no slot factor is configured", factors.ErrInvalidInput)
	}
	sl, ok := f.(catalog.SlotLoader)
	if !ok {
		return fmt.Errorf("%w: factor %q does not track slots", factors.ErrInvalidInput, catalog.NameSlot)
	}
	for _, holder := range balances {
		sl.UpdateTokensWithSlot(holder)
	}
	return nil
}

func (e *Engine) recordFailure(seasonSlug string, err error) {
	kind := Kind(err)
	e.metricsOr(func(m *metrics.Metrics) {
		m.RecordCalculation(seasonSlug, "error")
		m.RecordFactorError(seasonSlug, kind)
	})
	if !InputError(err) {
		e.logger.Warn("cpu calculation failed", "season", seasonSlug, "kind", kind, "error", err)
	}
}

func (e *Engine) metricsOr(fn func(*metrics.Metrics)) {
	if e.metrics != nil {
		fn(e.metrics)
	}
}

func (e *Engine) audit(ctx context.Context, requestID, seasonSlug, source string, er EntityResult) {
	if e.opts.Store == nil || !e.opts.Record {
		return
	}
	c := &store.Calculation{
		RequestID:  requestUUID(requestID),
		SeasonSlug: seasonSlug,
		EntityID:   er.ID,
		Status:     store.CalculationSucceeded,
		Error:      er.Error,
		Source:     source,
	}
	if er.err != nil {
		c.Status = store.CalculationFailed
	}
	if er.Result != nil {
		c.CPU = er.Result.CPU.String()
		doc, err := resultDocument(er.Result)
		if err != nil {
			e.logger.Error("failed to encode calculation result", "request_id", requestID, "entity", er.ID, "error", err)
		}
		c.Result = doc
	}
	if err := e.opts.Store.CreateCalculation(ctx, c); err != nil {
		e.logger.Error("failed to record calculation", "request_id", requestID, "entity", er.ID, "error", err)
	}
}

// resultDocument renders v through its JSON form into the generic document
// stored in the audit row.
func resultDocument(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return doc, nil
}

// requestUUID keeps caller-chosen request ids that are not UUIDs stable in
// the audit log.
func requestUUID(id string) uuid.UUID {
	if u, err := uuid.Parse(id); err == nil {
		return u
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id))
}
