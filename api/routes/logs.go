package routes

import (
	"net/http"
	"time"

	"github.com/kilianp07/fieldroute/core/routing/logging"
)

// NewLogHandler returns an HTTP handler exposing schedule logs via GET /api/routes/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store logging.LogStore, token string) http.Handler {
	return requireToken(token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		params := r.URL.Query()
		q := logging.LogQuery{
			RunID:        params.Get("run_id"),
			TechnicianID: params.Get("technician_id"),
			JobID:        params.Get("job_id"),
			Strategy:     params.Get("strategy"),
		}
		if s := params.Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := params.Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.LogRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}))
}
