package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/internal/input"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Planner is the part of routing.Engine used by the handlers.
type Planner interface {
	OptimizeRoutes(ctx context.Context, techs []model.Technician, jobs []model.Job, opts routing.Options) (*routing.Result, error)
	Reoptimize(ctx context.Context, techs []model.Technician, existing model.Schedule, newJobs []model.Job, completed []string, opts routing.Options) (*routing.Result, error)
}

// ReoptimizeRequest is the body of POST /api/routes/reoptimize. Jobs in the
// embedded input are the new jobs.
type ReoptimizeRequest struct {
	input.File
	Schedule  model.Schedule `json:"schedule"`
	Completed []string       `json:"completed"`
}

type errorBody struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// NewOptimizeHandler serves POST /api/routes/optimize with an input.File body.
func NewOptimizeHandler(p Planner, token string) http.Handler {
	return requireToken(token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in input.File
		if !decodeBody(w, r, &in) {
			return
		}
		res, err := p.OptimizeRoutes(r.Context(), in.TechnicianList(), in.JobList(), options(&in))
		respond(w, res, err)
	}))
}

// NewReoptimizeHandler serves POST /api/routes/reoptimize.
func NewReoptimizeHandler(p Planner, token string) http.Handler {
	return requireToken(token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ReoptimizeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := p.Reoptimize(r.Context(), req.TechnicianList(), req.Schedule, req.JobList(), req.Completed, options(&req.File))
		respond(w, res, err)
	}))
}

func options(in *input.File) routing.Options {
	return routing.Options{Depot: in.Depot, Profile: geo.Profile(in.Profile)}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error()})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, res *routing.Result, err error) {
	var verr *routing.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid input", Problems: verr.Problems})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
