// Package instrument runs reconciles with metrics, tracing and logging.
//
// A Runner wraps the hooks of a morph.Options value to count what each call
// did, records the counts on Prometheus collectors, and opens an
// OpenTelemetry span around the call:
//
//	reg := prometheus.NewRegistry()
//	runner := instrument.NewRunner(
//	    instrument.WithMetrics(instrument.NewMetrics(instrument.WithRegistry(reg))),
//	    instrument.WithTracer(otel.Tracer("morph")),
//	)
//	root, summary, err := runner.Run(ctx, live, target, morph.Options{})
//
// Metrics collected (namespace "morph" by default):
//   - reconciles_total: reconciles by status (ok, error)
//   - reconcile_duration_seconds: histogram of reconcile time
//   - mutations_total: applied mutations by op
//   - nodes_added_total, nodes_discarded_total, elements_updated_total
//   - live_trees, watchers: gauges maintained by the tree server
package instrument
