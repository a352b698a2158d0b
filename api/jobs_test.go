package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winterop-com/servicekit-sub001/scheduler"
)

func jobsApp(t *testing.T) *Application {
	t.Helper()
	return buildApp(t, NewBuilder(testInfo()).WithDatabase("").WithJobs(2))
}

func TestJobs_ListAndGet(t *testing.T) {
	app := jobsApp(t)

	id, err := app.Scheduler().Submit(func(ctx context.Context) (any, error) {
		return "done", nil
	})
	require.NoError(t, err)
	require.NoError(t, app.Scheduler().Wait(context.Background(), id))

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var records []scheduler.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, scheduler.StatusCompleted, records[0].Status)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var record scheduler.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, id, record.ID)
}

func TestJobs_Result(t *testing.T) {
	app := jobsApp(t)

	id, err := app.Scheduler().Submit(func(ctx context.Context) (any, error) {
		return map[string]int{"rows": 10}, nil
	})
	require.NoError(t, err)
	require.NoError(t, app.Scheduler().Wait(context.Background(), id))

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+id.String()+"/result", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Result map[string]int `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 10, payload.Result["rows"])
}

func TestJobs_CancelAndDelete(t *testing.T) {
	app := jobsApp(t)

	started := make(chan struct{})
	id, err := app.Scheduler().Submit(func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	<-started

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs/"+id.String()+"/cancel", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NoError(t, app.Scheduler().Wait(context.Background(), id))

	// Cancel again: already terminal.
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs/"+id.String()+"/cancel", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobs_InvalidID(t *testing.T) {
	app := jobsApp(t)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestJobs_HistoryEndpoint(t *testing.T) {
	app := jobsApp(t)

	id, err := app.Scheduler().Submit(func(ctx context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)
	require.NoError(t, app.Scheduler().Wait(context.Background(), id))

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/history", nil))
		if rec.Code != http.StatusOK {
			return false
		}
		var records []scheduler.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
			return false
		}
		return len(records) == 1 && records[0].ID == id
	}, 2*time.Second, 10*time.Millisecond)
}
