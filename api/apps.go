package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppManifest describes a mounted static app, read from app.yaml in the
// app directory.
type AppManifest struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version,omitempty"`
	Entry       string `yaml:"entry" json:"entry,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// StaticApp is a static app directory mounted under a URL prefix.
type StaticApp struct {
	Dir      string
	Prefix   string
	Manifest AppManifest
}

// mountedApp is the /api/v1/system/apps list entry.
type mountedApp struct {
	Prefix   string      `json:"prefix"`
	Manifest AppManifest `json:"manifest"`
}

// loadApp validates the app directory and reads its manifest. The entry
// file defaults to index.html when the manifest omits it.
func loadApp(dir, prefix string) (StaticApp, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return StaticApp{}, fmt.Errorf("app directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return StaticApp{}, fmt.Errorf("app path %s is not a directory", dir)
	}

	prefix = normalizePrefix(prefix)
	manifest := AppManifest{Name: filepath.Base(dir), Entry: "index.html"}
	raw, err := os.ReadFile(filepath.Join(dir, "app.yaml"))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &manifest); err != nil {
			return StaticApp{}, fmt.Errorf("parse %s/app.yaml: %w", dir, err)
		}
		if manifest.Entry == "" {
			manifest.Entry = "index.html"
		}
	case !os.IsNotExist(err):
		return StaticApp{}, fmt.Errorf("read %s/app.yaml: %w", dir, err)
	}

	return StaticApp{Dir: dir, Prefix: prefix, Manifest: manifest}, nil
}

func normalizePrefix(prefix string) string {
	prefix = "/" + strings.Trim(prefix, "/")
	return prefix
}

// handler serves the app directory under its prefix. Requests for the
// prefix root serve the manifest entry file.
func (s StaticApp) handler() http.Handler {
	fs := http.StripPrefix(s.Prefix, http.FileServer(http.Dir(s.Dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == s.Prefix || r.URL.Path == s.Prefix+"/" {
			http.ServeFile(w, r, filepath.Join(s.Dir, s.Manifest.Entry))
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// dedupeApps keeps the last app mounted at each prefix, preserving the
// order of first appearance.
func dedupeApps(apps []StaticApp) []StaticApp {
	latest := make(map[string]StaticApp, len(apps))
	var order []string
	for _, app := range apps {
		if _, seen := latest[app.Prefix]; !seen {
			order = append(order, app.Prefix)
		}
		latest[app.Prefix] = app
	}
	out := make([]StaticApp, 0, len(order))
	for _, prefix := range order {
		out = append(out, latest[prefix])
	}
	return out
}
