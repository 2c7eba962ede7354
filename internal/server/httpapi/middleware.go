package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekazakov/taskmate/internal/common"
	"github.com/ekazakov/taskmate/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// tokenScheme is the Authorization header scheme for opaque bearer keys.
const tokenScheme = "Token "

// userFromContext returns the authenticated user set by requireAuth.
func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// requireAuth rejects requests without a valid bearer token before they reach
// a handler, and stores the resolved user on the context. Responses are
// deliberately generic: they never say which part of the credential failed.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, tokenScheme) {
			s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
			return
		}

		key := strings.TrimSpace(strings.TrimPrefix(header, tokenScheme))
		if key == "" {
			s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
			return
		}

		user, err := s.users.Authenticate(r.Context(), key)
		if err != nil {
			// Only an actually bad key is a credential failure; a store
			// outage must not masquerade as one.
			if errors.Is(err, common.ErrInvalidToken) {
				s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgInvalidToken)
				return
			}
			s.writeServiceError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// logRequests tags every request with a UUID and logs method, path, status,
// and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
