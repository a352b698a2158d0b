package api

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/winterop-com/servicekit-sub001/domain"
	"github.com/winterop-com/servicekit-sub001/middleware"
)

// Hook is a lifecycle callback invoked around Run.
type Hook func(ctx context.Context, app *Application) error

// AuthOptions configures the authentication feature. Keys are gathered
// from the explicit list, the key file (one key per line, # comments),
// and the SERVICEKIT_API_KEYS environment variable.
type AuthOptions struct {
	Keys                 []string
	KeyFile              string
	Header               string // default X-API-Key
	JWTSecret            string // enables HS256 bearer tokens when set
	UnauthenticatedPaths []string
}

// APIKeysEnvVar supplies API keys as a comma-separated list.
const APIKeysEnvVar = "SERVICEKIT_API_KEYS"

var checkNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type routeMount struct {
	pattern string
	fn      func(chi.Router)
}

// Builder accumulates service features and produces an Application. The
// zero value is not usable; construct with NewBuilder. The first error
// raised by a fluent call sticks and surfaces from Build.
type Builder struct {
	info  Info
	err   error
	built bool

	listenAddr string
	logger     *slog.Logger

	databaseEnabled bool
	dsn             string

	healthEnabled bool
	checks        []Check

	systemEnabled bool

	jobsEnabled    bool
	maxConcurrency int64

	authEnabled bool
	auth        AuthOptions

	monitoringEnabled bool
	loggingEnabled    bool
	landingEnabled    bool

	rateLimit   *middleware.RateLimitConfig
	corsOrigins []string

	apps          []StaticApp
	routes        []routeMount
	startupHooks  []Hook
	shutdownHooks []Hook
}

// NewBuilder starts assembling a service with the given descriptor.
func NewBuilder(info Info) *Builder {
	b := &Builder{info: info}
	if info.Name == "" {
		b.err = domain.ErrValidation("service name is required")
	}
	if info.Version == "" && b.err == nil {
		b.err = domain.ErrValidation("service version is required")
	}
	return b
}

// fluent guards a fluent call: returns false when the builder is already
// errored or frozen.
func (b *Builder) fluent() bool {
	if b.err != nil {
		return false
	}
	if b.built {
		b.err = domain.ErrConflict("builder is frozen after Build")
		return false
	}
	return true
}

// WithDatabase enables persistence. Empty dsn or ":memory:" opens
// in-memory SQLite; a "duckdb:" prefixed path opens DuckDB; anything
// else is an on-disk SQLite path.
func (b *Builder) WithDatabase(dsn string) *Builder {
	if !b.fluent() {
		return b
	}
	b.databaseEnabled = true
	b.dsn = dsn
	return b
}

// WithHealth enables the /health endpoints with the given checks. A
// database connectivity check is added automatically when persistence is
// enabled.
func (b *Builder) WithHealth(checks ...Check) *Builder {
	if !b.fluent() {
		return b
	}
	for _, check := range checks {
		if !checkNamePattern.MatchString(check.Name) {
			b.err = domain.ErrValidation("invalid health check name %q", check.Name)
			return b
		}
		if check.Fn == nil {
			b.err = domain.ErrValidation("health check %q has no function", check.Name)
			return b
		}
	}
	b.healthEnabled = true
	b.checks = append(b.checks, checks...)
	return b
}

// WithSystem enables the /api/v1/system endpoints.
func (b *Builder) WithSystem() *Builder {
	if !b.fluent() {
		return b
	}
	b.systemEnabled = true
	return b
}

// WithJobs enables the job scheduler. maxConcurrency <= 0 means
// unbounded. Job history is persisted when persistence is also enabled.
func (b *Builder) WithJobs(maxConcurrency int64) *Builder {
	if !b.fluent() {
		return b
	}
	b.jobsEnabled = true
	b.maxConcurrency = maxConcurrency
	return b
}

// WithAuth enables API key authentication, optionally with HS256 bearer
// tokens. Resolving zero keys at Build time is an error.
func (b *Builder) WithAuth(opts AuthOptions) *Builder {
	if !b.fluent() {
		return b
	}
	b.authEnabled = true
	b.auth = opts
	return b
}

// WithMonitoring enables Prometheus metrics at /metrics plus per-request
// HTTP instrumentation.
func (b *Builder) WithMonitoring() *Builder {
	if !b.fluent() {
		return b
	}
	b.monitoringEnabled = true
	return b
}

// WithLogging enables structured request logging and request-ID
// propagation.
func (b *Builder) WithLogging() *Builder {
	if !b.fluent() {
		return b
	}
	b.loggingEnabled = true
	return b
}

// WithLandingPage enables the HTML landing page at "/".
func (b *Builder) WithLandingPage() *Builder {
	if !b.fluent() {
		return b
	}
	b.landingEnabled = true
	return b
}

// WithApp mounts a static app directory under the URL prefix. The
// directory may carry an app.yaml manifest. A later mount at the same
// prefix replaces the earlier one.
func (b *Builder) WithApp(dir, prefix string) *Builder {
	if !b.fluent() {
		return b
	}
	app, err := loadApp(dir, prefix)
	if err != nil {
		b.err = err
		return b
	}
	b.apps = append(b.apps, app)
	return b
}

// WithRoutes attaches a custom chi sub-router at the pattern.
func (b *Builder) WithRoutes(pattern string, fn func(chi.Router)) *Builder {
	if !b.fluent() {
		return b
	}
	if !strings.HasPrefix(pattern, "/") {
		b.err = domain.ErrValidation("route pattern %q must start with /", pattern)
		return b
	}
	b.routes = append(b.routes, routeMount{pattern: pattern, fn: fn})
	return b
}

// WithRateLimit applies token-bucket rate limiting per client IP.
func (b *Builder) WithRateLimit(requestsPerSecond float64, burst int) *Builder {
	if !b.fluent() {
		return b
	}
	if requestsPerSecond <= 0 {
		b.err = domain.ErrValidation("rate limit must be positive, got %v", requestsPerSecond)
		return b
	}
	b.rateLimit = &middleware.RateLimitConfig{
		RequestsPerSecond: requestsPerSecond,
		Burst:             burst,
	}
	return b
}

// WithCORS allows cross-origin requests from the given origins.
func (b *Builder) WithCORS(origins ...string) *Builder {
	if !b.fluent() {
		return b
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	b.corsOrigins = origins
	return b
}

// WithListenAddr overrides the default listen address 0.0.0.0:8000.
func (b *Builder) WithListenAddr(addr string) *Builder {
	if !b.fluent() {
		return b
	}
	b.listenAddr = addr
	return b
}

// WithLogger sets the application logger. Without it the slog default
// logger is used.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if !b.fluent() {
		return b
	}
	b.logger = logger
	return b
}

// OnStartup registers a hook that runs before the server starts
// listening. Hooks run in registration order; the first error aborts Run.
func (b *Builder) OnStartup(hook Hook) *Builder {
	if !b.fluent() {
		return b
	}
	b.startupHooks = append(b.startupHooks, hook)
	return b
}

// OnShutdown registers a hook that runs during Close, in reverse
// registration order.
func (b *Builder) OnShutdown(hook Hook) *Builder {
	if !b.fluent() {
		return b
	}
	b.shutdownHooks = append(b.shutdownHooks, hook)
	return b
}

// Build is terminal: it validates the accumulated configuration, opens
// resources, wires the router, and freezes the builder. Fluent calls and
// repeated Build calls afterwards return errors.
func (b *Builder) Build() (*Application, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, domain.ErrConflict("Build may only be called once")
	}
	b.built = true
	return newApplication(b)
}

// resolveAPIKeys gathers keys from the options, the key file, and the
// environment.
func resolveAPIKeys(opts AuthOptions) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for _, key := range opts.Keys {
		if key = strings.TrimSpace(key); key != "" {
			keys[key] = struct{}{}
		}
	}
	if opts.KeyFile != "" {
		raw, err := os.ReadFile(opts.KeyFile)
		if err != nil {
			return nil, domain.ErrValidation("read API key file: %v", err)
		}
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			keys[line] = struct{}{}
		}
	}
	for _, key := range strings.Split(os.Getenv(APIKeysEnvVar), ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys[key] = struct{}{}
		}
	}
	if len(keys) == 0 {
		return nil, domain.ErrValidation("auth enabled but no API keys configured (set %s or pass keys)", APIKeysEnvVar)
	}
	return keys, nil
}
