// Package infra contains technical adapters: the OSRM duration provider and
// its Redis cache, the VROOM solver client, MQTT and metrics exporters,
// Sentry reporting and the zerolog logger. These packages depend only on
// the interfaces defined in the core packages.
package infra
