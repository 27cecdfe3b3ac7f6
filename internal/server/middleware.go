package server

import (
	"context"
	"net/http"

	"github.com/veridex/authenticity-analyzer/internal/auth"
)

type contextKey int

const principalKey contextKey = iota

// authenticate resolves the bearer token and stores the principal on
// the request context. Requests without a valid token never reach the
// handlers behind it.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get("Authorization"))
		principal, err := s.resolver.Verify(r.Context(), token)
		if err != nil {
			respondError(w, "Invalid or missing credentials", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(ctx context.Context) auth.Principal {
	principal, _ := ctx.Value(principalKey).(auth.Principal)
	return principal
}
