package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winterop-com/servicekit-sub001/domain"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound("job missing"), http.StatusNotFound},
		{"validation", domain.ErrValidation("bad input"), http.StatusBadRequest},
		{"conflict", domain.ErrConflict("duplicate"), http.StatusConflict},
		{"unauthorized", domain.ErrUnauthorized("no key"), http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromError(tt.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/42", nil)

	WriteError(rec, req, domain.ErrNotFound("job 42 not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var doc Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "urn:servicekit:error:not-found", doc.Type)
	assert.Equal(t, "Not Found", doc.Title)
	assert.Equal(t, "job 42 not found", doc.Detail)
	assert.Equal(t, "/api/v1/jobs/42", doc.Instance)
}
