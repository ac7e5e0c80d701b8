package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/chordme/songsearch/internal/models"
)

type contextKey string

const userIDKey contextKey = "user_id"

// requireAuth checks the Authorization bearer token against the configured
// token table and stores the caller's user ID in the request context.
// Requests without a valid token get 401 and never reach a handler.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		userID, ok := s.tokens[token]
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// scopeFrom returns the authenticated caller's scope.
func scopeFrom(r *http.Request) models.Scope {
	userID, _ := r.Context().Value(userIDKey).(string)
	return models.Scope{UserID: userID}
}
