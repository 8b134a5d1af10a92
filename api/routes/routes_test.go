package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/core/routing/logging"
)

const optimizeBody = `{
  "technicians": [{"id": "t1", "name": "Mike", "lat": 32.7767, "lon": -96.7970, "skills": ["hvac"]}],
  "jobs": [
    {"id": "j1", "lat": 32.7792, "lon": -96.8008, "required_skills": ["hvac"]},
    {"id": "j2", "lat": 32.8100, "lon": -96.8500, "urgency": "high"}
  ]
}`

func newTestMux(t *testing.T, token string) (*http.ServeMux, logging.LogStore) {
	t.Helper()
	store, err := logging.NewJSONLStore(filepath.Join(t.TempDir(), "schedules.jsonl"))
	require.NoError(t, err)
	e, err := routing.NewEngine(routing.Config{}, routing.NewLPSolver(), nil, nil, nil, nil)
	require.NoError(t, err)
	e.SetLogStore(store)
	t.Cleanup(func() { _ = e.Close() })
	return NewMux(e, store, token), store
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestOptimizeAndLogs(t *testing.T) {
	mux, _ := newTestMux(t, "tok")

	rr := do(t, mux, http.MethodPost, "/api/routes/optimize", optimizeBody, "tok")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res routing.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, []string{"j1", "j2"}, sortedJobs(res.Schedule))

	rr = do(t, mux, http.MethodGet, "/api/routes/logs?run_id="+res.RunID+"&start="+time.Now().Add(-time.Hour).Format(time.RFC3339), "", "tok")
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []logging.LogRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, routing.KindOptimize, recs[0].Kind)

	rr = do(t, mux, http.MethodGet, "/api/routes/logs?job_id=nope", "", "tok")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestReoptimizeHandler(t *testing.T) {
	mux, _ := newTestMux(t, "")
	body := `{
  "technicians": [{"id": "t1", "lat": 32.7767, "lon": -96.7970}],
  "schedule": {"t1": [{"job_id": "j1", "technician_id": "t1", "lat": 32.7792, "lon": -96.8008, "service_minutes": 60},
                      {"job_id": "j2", "technician_id": "t1", "lat": 32.81, "lon": -96.85, "service_minutes": 45}]},
  "completed": ["j1"],
  "jobs": [{"id": "j3", "lat": 32.79, "lon": -96.81}]
}`
	rr := do(t, mux, http.MethodPost, "/api/routes/reoptimize", body, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res routing.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, []string{"j2", "j3"}, sortedJobs(res.Schedule))
}

func TestHandlerErrors(t *testing.T) {
	mux, _ := newTestMux(t, "tok")

	assert.Equal(t, http.StatusUnauthorized, do(t, mux, http.MethodPost, "/api/routes/optimize", optimizeBody, "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodGet, "/api/routes/optimize", "", "tok").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodPost, "/api/routes/logs", "", "tok").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/routes/optimize", "{", "tok").Code)

	rr := do(t, mux, http.MethodPost, "/api/routes/optimize", `{"technicians":[{"id":"t1","lat":95,"lon":0}],"jobs":[{"id":"j1","lat":1,"lon":1}]}`, "tok")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var eb errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &eb))
	assert.NotEmpty(t, eb.Problems)
}

func TestNewMuxWithoutStore(t *testing.T) {
	e, err := routing.NewEngine(routing.Config{}, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	mux := NewMux(e, nil, "")
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/routes/logs", "", "").Code)
}

func TestStartServerStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- StartServer(ctx, "127.0.0.1:0", http.NewServeMux(), nopLogger{}) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func sortedJobs(s model.Schedule) []string {
	ids := s.JobIDs()
	sort.Strings(ids)
	return ids
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
