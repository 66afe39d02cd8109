// Package trace records what a resolution run is doing: which command runs,
// which pass (expand, validate, merge) is active and which layer or file is
// being processed.
//
// Enable it from the CLI:
//
//	lintconf resolve --trace=- --trace-level=detail .lintconfrc.yaml
//
// Tracers:
//
//   - Nop: zero-overhead default
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump on panic
//   - MultiTracer: fans out to several tracers
//
// Levels select scopes: phase shows driver and pass boundaries, detail adds
// per-layer events, debug shows everything.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "merge", 0)
//	defer span.End("")
package trace
