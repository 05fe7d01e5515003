package pipeline

import (
	"context"
	"time"

	"github.com/ohrlando/stream-list/logger"
	"github.com/ohrlando/stream-list/observability"
)

// Evaluation describes a terminal call about to run.
type Evaluation struct {
	ID       string
	Terminal string
	// Stages counts recorded stages plus the terminal's own temporary stage.
	Stages int
	// Source is the source size, or -1 for projected pipelines.
	Source int
}

// Report describes a finished terminal call.
type Report struct {
	Scanned        int
	Emitted        int
	ShortCircuited bool
	Duration       time.Duration
	// Err is set when a stage callable or the consumer panicked. The panic is
	// re-raised after every observer has been notified.
	Err error
}

// Observer is notified around every terminal evaluation. Observe is called
// before the first element is scanned; the returned func, if non-nil, is
// called once the evaluation ends.
type Observer interface {
	Observe(ctx context.Context, ev Evaluation) func(Report)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Evaluation) func(Report)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, ev Evaluation) func(Report) {
	return f(ctx, ev)
}

// WithTracing records an OpenTelemetry span per evaluation, named
// "{prefix}.{terminal}".
func WithTracing(prefix string) Option {
	return WithObserver(ObserverFunc(func(ctx context.Context, ev Evaluation) func(Report) {
		ctx, span := observability.StartSpan(ctx, prefix+"."+ev.Terminal)
		observability.SetSpanAttribute(ctx, observability.AttrEvaluationID, ev.ID)
		observability.SetSpanAttribute(ctx, observability.AttrTerminal, ev.Terminal)
		observability.SetSpanAttribute(ctx, observability.AttrStages, ev.Stages)
		observability.SetSpanAttribute(ctx, observability.AttrSourceSize, ev.Source)

		return func(r Report) {
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrScanned, r.Scanned)
			observability.SetSpanAttribute(ctx, observability.AttrEmitted, r.Emitted)
			observability.SetSpanAttribute(ctx, observability.AttrShortCircuited, r.ShortCircuited)
			observability.SetSpanAttribute(ctx, observability.AttrDurationMs, r.Duration.Milliseconds())
			if r.Err != nil {
				observability.SetSpanError(ctx, r.Err)
			}
		}
	}))
}

// WithMetrics records evaluation count, duration, and element counters.
func WithMetrics(metrics *observability.Metrics) Option {
	if metrics == nil {
		return func(*options) {}
	}
	return WithObserver(ObserverFunc(func(ctx context.Context, ev Evaluation) func(Report) {
		return func(r Report) {
			status := "ok"
			if r.Err != nil {
				status = "error"
				metrics.RecordError(ctx, "panic", "pipeline")
			}
			metrics.RecordEvaluation(ctx, ev.Terminal, status, r.Scanned, r.Emitted, r.Duration)
		}
	}))
}

// WithLogging logs every completed evaluation at debug level and every
// panicking one at error level. The evaluation ID comes from the observer
// context.
func WithLogging(log *logger.Logger) Option {
	if log == nil {
		return func(*options) {}
	}
	return WithObserver(ObserverFunc(func(ctx context.Context, ev Evaluation) func(Report) {
		return func(r Report) {
			fields := map[string]interface{}{
				logger.FieldTerminal: ev.Terminal,
				logger.FieldStages:   ev.Stages,
				logger.FieldScanned:  r.Scanned,
				logger.FieldEmitted:  r.Emitted,
				logger.FieldDuration: r.Duration.Milliseconds(),
				logger.FieldStatus:   "ok",
			}
			if r.Err != nil {
				fields[logger.FieldStatus] = "error"
				fields[logger.FieldError] = r.Err.Error()
				log.WithContext(ctx).Error("pipeline evaluation failed", fields)
				return
			}
			log.WithContext(ctx).Debug("pipeline evaluation completed", fields)
		}
	}))
}
