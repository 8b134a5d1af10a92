package plugins

import (
	"github.com/kilianp07/fieldroute/config"
	"github.com/kilianp07/fieldroute/core/factory"
	"github.com/kilianp07/fieldroute/core/routing/logging"
)

func init() {
	RegisterLogStore("jsonl", func(name string, conf map[string]any) (logging.LogStore, error) {
		var lc config.LoggingConfig
		if err := factory.Decode(conf, &lc); err != nil {
			return nil, err
		}
		return logging.NewJSONLStore(lc.Path)
	})
	RegisterLogStore("rotating", func(name string, conf map[string]any) (logging.LogStore, error) {
		var lc config.LoggingConfig
		if err := factory.Decode(conf, &lc); err != nil {
			return nil, err
		}
		return logging.NewRotatingJSONLStore(lc.Path, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays)
	})
	RegisterLogStore("sqlite", func(name string, conf map[string]any) (logging.LogStore, error) {
		var lc config.LoggingConfig
		if err := factory.Decode(conf, &lc); err != nil {
			return nil, err
		}
		return logging.NewSQLiteStore(lc.Path)
	})
}
