package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Pow2/internal/hermes"
)

// Listener serves calculation requests arriving over hermes.
type Listener struct {
	engine  *Engine
	hermes  hermes.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewListener(e *Engine, h hermes.Client, timeout time.Duration, logger *slog.Logger) *Listener {
	return &Listener{engine: e, hermes: h, timeout: timeout, logger: logger}
}

func (l *Listener) Start() error {
	return l.hermes.Subscribe(hermes.SubjectCPURequest, l.handle)
}

func (l *Listener) handle(_ string, data []byte) {
	req, err := DecodeRequest(data)
	if err != nil {
		id := uuid.NewString()
		l.logger.Warn("invalid cpu request event", "error", err)
		l.publish(hermes.SubjectCPUFailed(id), hermes.CalculationFailedEvent{
			RequestID: id,
			Error:     err.Error(),
			Kind:      KindInvalidInput,
		})
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if !hermes.ValidToken(req.RequestID) {
		id := uuid.NewString()
		l.logger.Warn("cpu request id is not a subject token", "request_id", req.RequestID, "replacement", id)
		l.publish(hermes.SubjectCPUFailed(id), hermes.CalculationFailedEvent{
			RequestID: id,
			Season:    req.Season,
			Error:     fmt.Sprintf("request_id %q must not contain '.', '*', '>' or whitespace", req.RequestID),
			Kind:      KindInvalidInput,
		})
		return
	}

	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	resp, err := l.engine.Calculate(ctx, req, SourceHermes)
	if err != nil {
		l.publish(hermes.SubjectCPUFailed(req.RequestID), hermes.CalculationFailedEvent{
			RequestID: req.RequestID,
			Season:    req.Season,
			Error:     err.Error(),
			Kind:      Kind(err),
		})
		return
	}
	l.publish(hermes.SubjectCPUCalculated(req.RequestID), hermes.CalculatedEvent{
		RequestID:    resp.RequestID,
		Season:       resp.Season,
		Results:      resp.Results,
		Failed:       resp.Failed,
		CalculatedAt: resp.Now,
	})
}

func (l *Listener) publish(subject string, event interface{}) {
	if err := l.hermes.Publish(subject, event); err != nil {
		l.logger.Error("failed to publish", "subject", subject, "error", err)
	}
}
