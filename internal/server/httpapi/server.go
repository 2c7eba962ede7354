// Package httpapi exposes the server's REST surface: signup, login, logout,
// the password flows, and owner-scoped task CRUD, all over JSON with
// per-field error maps.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ekazakov/taskmate/internal/logging"
	"github.com/ekazakov/taskmate/internal/server/models"
)

// UserService is the authentication surface the handlers depend on.
type UserService interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, userID int64) error
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
	Authenticate(ctx context.Context, key string) (*models.User, error)
}

// TaskService is the task surface the handlers depend on.
type TaskService interface {
	Create(ctx context.Context, userID int64, title, description string) (*models.Task, error)
	List(ctx context.Context, userID int64) ([]*models.Task, error)
	Get(ctx context.Context, userID, taskID int64) (*models.Task, error)
	Update(ctx context.Context, userID, taskID int64, title, description string) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}

// Timeouts carries the HTTP server timeouts from config.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// HealthCheck probes a dependency for the /healthz endpoint. A nil check
// means the endpoint only reports process liveness.
type HealthCheck func(ctx context.Context) error

// Server hosts the REST API.
type Server struct {
	address  string
	logger   logging.Logger
	users    UserService
	tasks    TaskService
	health   HealthCheck
	timeouts Timeouts
}

// NewServer constructs the HTTP server for the given services.
func NewServer(addr string, l logging.Logger, us UserService, ts TaskService, health HealthCheck, timeouts Timeouts) *Server {
	return &Server{
		address:  addr,
		logger:   l.With("module", "http_server"),
		users:    us,
		tasks:    ts,
		health:   health,
		timeouts: timeouts,
	}
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully within the configured deadline.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  s.timeouts.Read,
		WriteTimeout: s.timeouts.Write,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.Shutdown)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
