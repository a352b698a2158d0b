package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, app *Application) (int, healthReport) {
	t.Helper()
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var report healthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	return rec.Code, report
}

func TestHealth_NoChecks(t *testing.T) {
	app := buildApp(t, NewBuilder(testInfo()).WithHealth())

	code, report := getHealth(t, app)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, Healthy, report.Status)
	assert.Empty(t, report.Checks)
}

func TestHealth_AggregatesWorstState(t *testing.T) {
	app := buildApp(t, NewBuilder(testInfo()).WithHealth(
		Check{Name: "cache", Fn: func(ctx context.Context) CheckResult { return OK() }},
		Check{Name: "upstream", Fn: func(ctx context.Context) CheckResult {
			return Degrade("high latency")
		}},
	))

	code, report := getHealth(t, app)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, Degraded, report.Status)
	assert.Equal(t, Healthy, report.Checks["cache"].State)
	assert.Equal(t, "high latency", report.Checks["upstream"].Detail)
}

func TestHealth_Unhealthy503(t *testing.T) {
	app := buildApp(t, NewBuilder(testInfo()).WithHealth(
		Check{Name: "disk", Fn: func(ctx context.Context) CheckResult {
			return Fail("volume full")
		}},
	))

	code, report := getHealth(t, app)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, Unhealthy, report.Status)
}

func TestHealth_DatabaseCheckAutoRegistered(t *testing.T) {
	app := buildApp(t, NewBuilder(testInfo()).WithDatabase("").WithHealth())

	code, report := getHealth(t, app)
	assert.Equal(t, http.StatusOK, code)
	require.Contains(t, report.Checks, "database")
	assert.Equal(t, Healthy, report.Checks["database"].State)
}

func TestHealth_DatabaseCheckFailsAfterClose(t *testing.T) {
	app := buildApp(t, NewBuilder(testInfo()).WithDatabase("").WithHealth())
	require.NoError(t, app.DB().Close())

	code, report := getHealth(t, app)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, Unhealthy, report.Checks["database"].State)
}

func TestHealthStream_SendsEvents(t *testing.T) {
	app := buildApp(t, NewBuilder(testInfo()).WithHealth(
		Check{Name: "cache", Fn: func(ctx context.Context) CheckResult { return OK() }},
	))

	server := httptest.NewServer(app.Handler())
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/health/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: health", strings.TrimSpace(event))

	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(data, "data: "))

	var report healthReport
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(data), "data: ")), &report))
	assert.Equal(t, Healthy, report.Status)
}
