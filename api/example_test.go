package api_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/winterop-com/servicekit-sub001/api"
)

// Example_monitoredService assembles a service with six features and
// shows the /metrics endpoint served by the result.
func Example_monitoredService() {
	app, err := api.NewBuilder(api.Info{
		Name:        "weather",
		DisplayName: "Weather Service",
		Version:     "0.1.0",
		Summary:     "Weather observations API",
	}).
		WithDatabase("").
		WithHealth().
		WithSystem().
		WithMonitoring().
		WithLogging().
		WithLandingPage().
		Build()
	if err != nil {
		fmt.Println("build failed:", err)
		return
	}
	defer app.Close()

	fmt.Println("built:", app.Info().Name, app.Info().Version)
	fmt.Println("listen:", app.ListenAddr())

	server := httptest.NewServer(app.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		fmt.Println("request failed:", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	fmt.Println("metrics status:", resp.StatusCode)
	fmt.Println("exposes go_goroutines:", strings.Contains(string(body), "go_goroutines"))

	// Output:
	// built: weather 0.1.0
	// listen: 0.0.0.0:8000
	// metrics status: 200
	// exposes go_goroutines: true
}
