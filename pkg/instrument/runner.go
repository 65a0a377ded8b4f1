package instrument

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/morph/pkg/dom"
	"github.com/vango-dev/morph/pkg/morph"
)

// Summary describes what a reconcile did.
type Summary struct {
	Added     int            `json:"added"`
	Discarded int            `json:"discarded"`
	Updated   int            `json:"updated"`
	Mutations map[string]int `json:"mutations"` // by op name
	Total     int            `json:"total"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Runner runs reconciles with instrumentation. The zero value runs without
// metrics, traces or logs.
type Runner struct {
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// RunnerOption configures NewRunner.
type RunnerOption func(*Runner)

// WithMetrics records every run on m.
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracer opens a span per run on t.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithLogger logs each run at debug level, and failures at warn level.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the collectors the runner records on, or nil.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run reconciles live to target with opts. The caller's hooks still run;
// the runner only observes them. Cancelling ctx aborts the reconcile at the
// next element update with an error wrapping ctx.Err().
func (r *Runner) Run(ctx context.Context, live, target *dom.Node, opts morph.Options) (*dom.Node, Summary, error) {
	summary := Summary{Mutations: make(map[string]int)}
	if err := ctx.Err(); err != nil {
		return nil, summary, err
	}

	tracer := r.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	_, span := tracer.Start(ctx, "morph.Reconcile",
		trace.WithAttributes(
			attribute.String("morph.live", live.String()),
			attribute.String("morph.target", target.String()),
			attribute.Bool("morph.children_only", opts.ChildrenOnly),
		),
	)
	defer span.End()

	observe(ctx, &opts, &summary)

	start := time.Now()
	result, err := morph.Reconcile(live, target, opts)
	summary.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("morph.added", summary.Added),
		attribute.Int("morph.discarded", summary.Discarded),
		attribute.Int("morph.updated", summary.Updated),
		attribute.Int("morph.mutations", summary.Total),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	r.metrics.Observe(summary, err)

	if r.logger != nil {
		attrs := []any{
			"added", summary.Added,
			"discarded", summary.Discarded,
			"updated", summary.Updated,
			"mutations", summary.Total,
			"duration", summary.Duration,
		}
		if err != nil {
			r.logger.Warn("reconcile failed", append(attrs, "error", err)...)
		} else {
			r.logger.Debug("reconcile", attrs...)
		}
	}

	return result, summary, err
}

// observe chains counting hooks in front of the caller's.
func observe(ctx context.Context, opts *morph.Options, s *Summary) {
	onAdded := opts.OnNodeAdded
	opts.OnNodeAdded = func(n *dom.Node) error {
		s.Added++
		if onAdded != nil {
			return onAdded(n)
		}
		return nil
	}

	onDiscarded := opts.OnNodeDiscarded
	opts.OnNodeDiscarded = func(n *dom.Node) error {
		s.Discarded++
		if onDiscarded != nil {
			return onDiscarded(n)
		}
		return nil
	}

	onUpdated := opts.OnElementUpdated
	opts.OnElementUpdated = func(n *dom.Node) error {
		s.Updated++
		if onUpdated != nil {
			return onUpdated(n)
		}
		return nil
	}

	beforeUpdate := opts.OnBeforeElementUpdated
	opts.OnBeforeElementUpdated = func(live, target *dom.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if beforeUpdate != nil {
			return beforeUpdate(live, target)
		}
		return nil
	}

	onMutation := opts.OnMutation
	opts.OnMutation = func(m morph.Mutation) {
		s.Mutations[m.Op.String()]++
		s.Total++
		if onMutation != nil {
			onMutation(m)
		}
	}
}
