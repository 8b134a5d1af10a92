// Package metrics defines the sinks that record routing runs. Sinks such as
// PromSink and InfluxSink (infra/metrics) receive one RunRecord per
// optimization and can be combined with NewMultiSink. NewMetricsSink builds
// sinks from configuration through the factory registry and returns a
// MultiSink when several are configured.
package metrics
