package plugins

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fieldroute/core/routing/logging"
)

func TestBuiltinLogStores(t *testing.T) {
	assert.Equal(t, []string{"jsonl", "rotating", "sqlite"}, LogStoreTypes())

	for _, backend := range LogStoreTypes() {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "schedules."+backend)
			store, err := LogStores[backend](backend, map[string]any{
				"path":        path,
				"max_size_mb": 1,
			})
			require.NoError(t, err)
			defer func() { _ = store.Close() }()

			rec := logging.LogRecord{Timestamp: time.Now(), RunID: "r1", Kind: "optimize", Strategy: "lp"}
			require.NoError(t, store.Append(context.Background(), rec))
			got, err := store.Query(context.Background(), logging.LogQuery{RunID: "r1"})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "lp", got[0].Strategy)
		})
	}
}
