// Package factory provides a small generic registry used to build pluggable
// modules (solvers, metrics sinks) from configuration.
//
// Each module type registers a Factory under a name. Configuration files list
// modules as ModuleConfig entries and Registry.Create instantiates them,
// typically decoding the raw map with Decode.
package factory
