package api

import (
	"net/http"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// endpointLink is a row on the landing page.
type endpointLink struct {
	Path  string
	Label string
}

// handleLanding serves the HTML landing page at "/".
func (a *Application) handleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = landingPage(a.info, a.landingLinks()).Render(w)
}

func (a *Application) landingLinks() []endpointLink {
	links := []endpointLink{{Path: "/api/v1/info", Label: "Service info"}}
	if len(a.checks) > 0 {
		links = append(links,
			endpointLink{Path: "/health", Label: "Health report"},
			endpointLink{Path: "/health/stream", Label: "Health stream (SSE)"},
		)
	}
	if a.systemEnabled {
		links = append(links, endpointLink{Path: "/api/v1/system", Label: "System info"})
	}
	if a.scheduler != nil {
		links = append(links, endpointLink{Path: "/api/v1/jobs", Label: "Jobs"})
	}
	if a.metrics != nil {
		links = append(links, endpointLink{Path: "/metrics", Label: "Prometheus metrics"})
	}
	for _, app := range a.apps {
		links = append(links, endpointLink{Path: app.Prefix, Label: app.Manifest.Name})
	}
	return links
}

func landingPage(info Info, links []endpointLink) gomponents.Node {
	title := info.DisplayName
	if title == "" {
		title = info.Name
	}

	items := make([]gomponents.Node, 0, len(links))
	for _, link := range links {
		items = append(items, html.Li(
			html.A(html.Href(link.Path), gomponents.Text(link.Label)),
			gomponents.Text(" — "),
			html.Code(gomponents.Text(link.Path)),
		))
	}

	return html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title)),
			html.StyleEl(gomponents.Raw(`
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 3rem auto; padding: 0 1rem; color: #24292f; }
h1 { margin-bottom: 0.25rem; }
.version { color: #57606a; margin-top: 0; }
ul { line-height: 1.9; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; }
`)),
		),
		html.Body(
			html.H1(gomponents.Text(title)),
			html.P(html.Class("version"), gomponents.Text("version "+info.Version)),
			gomponents.If(info.Summary != "", html.P(gomponents.Text(info.Summary))),
			gomponents.If(info.Description != "", html.P(gomponents.Text(info.Description))),
			html.H2(gomponents.Text("Endpoints")),
			html.Ul(gomponents.Group(items)),
		),
	)
}
