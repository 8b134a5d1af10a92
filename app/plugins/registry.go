package plugins

import (
	"sort"

	"github.com/kilianp07/fieldroute/core/routing/logging"
)

// LogStoreFactory builds a schedule log store from raw config.
type LogStoreFactory func(name string, conf map[string]any) (logging.LogStore, error)

var LogStores = map[string]LogStoreFactory{}

func RegisterLogStore(name string, f LogStoreFactory) { LogStores[name] = f }

// LogStoreTypes lists the registered log store backends.
func LogStoreTypes() []string {
	names := make([]string, 0, len(LogStores))
	for n := range LogStores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
