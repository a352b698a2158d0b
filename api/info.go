// Package api assembles servicekit HTTP applications. A Builder
// accumulates optional features (database, health, system endpoints,
// jobs, auth, monitoring, logging, landing page, static apps) and
// produces a runnable Application on the terminal Build call.
package api

import (
	"encoding/json"
	"net/http"
)

// Info describes the service identity. It is immutable once handed to
// NewBuilder and is served at GET /api/v1/info.
type Info struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name,omitempty"`
	Version     string            `json:"version"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Contact     map[string]string `json:"contact,omitempty"`
	License     map[string]string `json:"license,omitempty"`
}

func (a *Application) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.info)
}
