package script

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchinto/internal/metrics"
)

// InstrumentedProgram wraps a Program with a per-evaluation timeout, metrics and logging.
type InstrumentedProgram struct {
	inner   Program
	name    string
	lang    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewInstrumentedProgram wraps a compiled program. A non-positive timeout disables the bound.
func NewInstrumentedProgram(
	inner Program, name, lang string,
	timeout time.Duration, logger *zap.Logger,
) *InstrumentedProgram {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProgram{
		inner:   inner,
		name:    name,
		lang:    lang,
		timeout: timeout,
		logger:  logger,
	}
}

// Run evaluates the inner program and records the outcome.
func (p *InstrumentedProgram) Run(ctx context.Context, b Bindings) (any, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	v, err := p.inner.Run(ctx, b)
	duration := time.Since(start)

	metrics.ScriptEvaluationDuration.WithLabelValues(p.lang).Observe(duration.Seconds())

	if err != nil {
		metrics.ScriptEvaluationsTotal.WithLabelValues(p.lang, "error").Inc()
		p.logger.Debug("Script evaluation failed",
			zap.String("script", p.name),
			zap.String("lang", p.lang),
			zap.String("id", b.ID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("run %s script: %w", p.lang, err)
	}

	metrics.ScriptEvaluationsTotal.WithLabelValues(p.lang, "ok").Inc()
	return v, nil
}
