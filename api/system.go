package api

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"
)

// systemInfo is the /api/v1/system response body.
type systemInfo struct {
	Time      time.Time `json:"time"`
	Timezone  string    `json:"timezone"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	Arch      string    `json:"arch"`
	Hostname  string    `json:"hostname"`
	NumCPU    int       `json:"num_cpu"`
}

func (a *Application) handleSystem(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	zone, _ := now.Zone()
	hostname, _ := os.Hostname()
	info := systemInfo{
		Time:      now,
		Timezone:  zone,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		Hostname:  hostname,
		NumCPU:    runtime.NumCPU(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

// handleSystemApps lists the static apps mounted on the application.
func (a *Application) handleSystemApps(w http.ResponseWriter, r *http.Request) {
	out := make([]mountedApp, 0, len(a.apps))
	for _, app := range a.apps {
		out = append(out, mountedApp{
			Prefix:   app.Prefix,
			Manifest: app.Manifest,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
