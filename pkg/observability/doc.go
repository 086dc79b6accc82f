/*
Package observability provides Prometheus instrumentation for the AgentLisp
engine.

It exposes counters for machine transitions and effect boundaries, a gauge
for live sessions, and a histogram for run segment durations. Adapters
mount the collectors on their metrics endpoint; the engine records into
them through lifecycle hooks.
*/
package observability
