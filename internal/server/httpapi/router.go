package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router assembles the REST surface. Status codes are the contract:
// 400 field errors, 401 missing/invalid token, 403 foreign owner, 404 absent id.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealthz)

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Post("/password/reset", s.handlePasswordReset)
	r.Post("/password/reset/confirm", s.handlePasswordResetConfirm)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/logout", s.handleLogout)
		r.Post("/password/change", s.handlePasswordChange)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleTaskList)
			r.Post("/", s.handleTaskCreate)
			r.Get("/{id}", s.handleTaskRetrieve)
			r.Put("/{id}", s.handleTaskUpdate)
			r.Delete("/{id}", s.handleTaskDelete)
		})
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err.Error())
			s.writeDetail(r.Context(), w, http.StatusInternalServerError, msgInternal)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
