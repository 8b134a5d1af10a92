// Package routes exposes the routing engine and its schedule log over HTTP.
package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/fieldroute/core/logger"
	"github.com/kilianp07/fieldroute/core/routing/logging"
)

// Config enables the HTTP API.
type Config struct {
	Addr  string `json:"addr"`
	Token string `json:"token"`
}

// NewMux registers the routing endpoints. The logs endpoint is only mounted
// when store is non-nil.
func NewMux(p Planner, store logging.LogStore, token string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/routes/optimize", NewOptimizeHandler(p, token))
	mux.Handle("/api/routes/reoptimize", NewReoptimizeHandler(p, token))
	if store != nil {
		mux.Handle("/api/routes/logs", NewLogHandler(store, token))
	}
	return mux
}

// StartServer serves h on addr until ctx is canceled.
func StartServer(ctx context.Context, addr string, h http.Handler, log logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving routing api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
