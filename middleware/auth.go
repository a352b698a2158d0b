package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/winterop-com/servicekit-sub001/problem"
)

type principalKey struct{}

// WithPrincipal stores the authenticated principal name in the context.
func WithPrincipal(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, principalKey{}, name)
}

// PrincipalFromContext extracts the principal name from the context.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(principalKey{}).(string)
	return name, ok
}

// AuthConfig configures the authentication middleware.
type AuthConfig struct {
	// APIKeys is the set of accepted API keys.
	APIKeys map[string]struct{}
	// HeaderName is the API key header (default X-API-Key).
	HeaderName string
	// JWTSecret enables HS256 bearer-token auth when non-empty.
	JWTSecret []byte
	// UnauthenticatedPaths are exact paths that bypass authentication.
	UnauthenticatedPaths map[string]struct{}
	// Logger logs rejected requests; nil disables logging.
	Logger *slog.Logger
}

// Auth returns an HTTP middleware enforcing API key authentication with
// optional HS256 bearer tokens. Bearer tokens are tried first, then the
// API key header. Requests to unauthenticated paths pass through.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	header := cfg.HeaderName
	if header == "" {
		header = "X-API-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, open := cfg.UnauthenticatedPaths[r.URL.Path]; open {
				next.ServeHTTP(w, r)
				return
			}

			// Bearer token first.
			if auth := r.Header.Get("Authorization"); len(cfg.JWTSecret) > 0 && strings.HasPrefix(auth, "Bearer ") {
				tokenStr := strings.TrimPrefix(auth, "Bearer ")
				token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
					return cfg.JWTSecret, nil
				}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
				if err == nil && token.Valid {
					if claims, ok := token.Claims.(jwt.MapClaims); ok {
						if sub, ok := claims["sub"].(string); ok && sub != "" {
							next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), sub)))
							return
						}
					}
				}
			}

			// Then the API key header.
			key := r.Header.Get(header)
			if key == "" {
				logRejected(cfg.Logger, r, "auth.missing_key")
				problem.Write(w, r, http.StatusUnauthorized, "missing authentication header: "+header)
				return
			}
			if _, ok := cfg.APIKeys[key]; !ok {
				logRejected(cfg.Logger, r, "auth.invalid_key")
				problem.Write(w, r, http.StatusUnauthorized, "invalid API key")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), "api-key")))
		})
	}
}

func logRejected(logger *slog.Logger, r *http.Request, msg string) {
	if logger == nil {
		return
	}
	logger.Warn(msg, "path", r.URL.Path, "method", r.Method)
}
