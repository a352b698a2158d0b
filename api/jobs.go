package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/winterop-com/servicekit-sub001/domain"
	"github.com/winterop-com/servicekit-sub001/problem"
)

// jobRoutes serves the scheduler's HTTP surface under /api/v1/jobs.
// Submission is programmatic (tasks are Go functions); the HTTP surface
// covers inspection and lifecycle control.
func (a *Application) jobRoutes(r chi.Router) {
	r.Get("/", a.handleJobList)
	r.Get("/{id}", a.handleJobGet)
	r.Get("/{id}/result", a.handleJobResult)
	r.Post("/{id}/cancel", a.handleJobCancel)
	r.Delete("/{id}", a.handleJobDelete)
	if a.history != nil {
		r.Get("/history", a.handleJobHistory)
	}
}

func (a *Application) handleJobList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.scheduler.Records())
}

func (a *Application) handleJobGet(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		problem.WriteError(w, r, err)
		return
	}
	record, err := a.scheduler.Record(id)
	if err != nil {
		problem.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(record)
}

func (a *Application) handleJobResult(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		problem.WriteError(w, r, err)
		return
	}
	result, err := a.scheduler.Result(id)
	if err != nil {
		problem.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "result": result})
}

func (a *Application) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		problem.WriteError(w, r, err)
		return
	}
	if !a.scheduler.Cancel(id) {
		problem.WriteError(w, r, domain.ErrConflict("job %s is not running", id))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *Application) handleJobDelete(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		problem.WriteError(w, r, err)
		return
	}
	if err := a.scheduler.Delete(id); err != nil {
		problem.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Application) handleJobHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := a.history.Recent(r.Context(), limit)
	if err != nil {
		problem.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func jobID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid job id %q", raw)
	}
	return id, nil
}
