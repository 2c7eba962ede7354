// Package server initializes and runs the application: it loads config,
// opens the database, runs migrations, wires services, and starts the HTTP
// server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ekazakov/taskmate/internal/logging"
	"github.com/ekazakov/taskmate/internal/server/config"
	"github.com/ekazakov/taskmate/internal/server/httpapi"
	"github.com/ekazakov/taskmate/internal/server/mailer"
	"github.com/ekazakov/taskmate/internal/server/repositories/repomanager"
	"github.com/ekazakov/taskmate/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	taskService *services.TaskService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	mail, err := newEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	us := services.NewUserService(db, rm, mail, logger, cfg)
	ts := services.NewTaskService(db, rm)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		userService: us,
		taskService: ts,
	}, nil
}

// newEmailSender picks Postmark when the tokens are configured, otherwise a
// development sender that writes messages to disk.
func newEmailSender(ctx context.Context, cfg *config.Config, logger logging.Logger) (mailer.EmailSender, error) {
	if cfg.PostmarkServerToken != "" {
		return mailer.NewPostmarkClient(mailer.Config{
			PostmarkServerToken:  cfg.PostmarkServerToken,
			PostmarkAccountToken: cfg.PostmarkAccountToken,
			SenderEmail:          cfg.SenderEmail,
		})
	}
	logger.Warn(ctx, "Postmark is not configured, writing emails to disk", "dir", cfg.DevEmailDir)
	return mailer.NewDevSender(cfg.DevEmailDir), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.userService, app.taskService, app.db.PingContext, httpapi.Timeouts{
		Read:     app.config.ReadTimeout,
		Write:    app.config.WriteTimeout,
		Shutdown: app.config.ShutdownTimeout,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err.Error())
	}
}
