package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type teamKey struct{}

// TeamResolver resolves a team ID from a bearer token.
type TeamResolver interface {
	ResolveTeam(ctx context.Context, token string) (string, error)
}

// TeamFromContext returns the team ID stored by AuthMiddleware, if present.
func TeamFromContext(ctx context.Context) (string, bool) {
	teamID, ok := ctx.Value(teamKey{}).(string)
	return teamID, ok
}

// AuthMiddleware rejects requests without a bearer token that resolves to a team.
func AuthMiddleware(resolver TeamResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="edgeline"`)
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			teamID, err := resolver.ResolveTeam(r.Context(), token)
			if err != nil || teamID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), teamKey{}, teamID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
