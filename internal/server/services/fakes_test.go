package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ekazakov/taskmate/internal/dbx"
	"github.com/ekazakov/taskmate/internal/logging"
	"github.com/ekazakov/taskmate/internal/server/config"
	"github.com/ekazakov/taskmate/internal/server/mailer"
	"github.com/ekazakov/taskmate/internal/server/models"
	"github.com/ekazakov/taskmate/internal/server/repositories/tasks"
	"github.com/ekazakov/taskmate/internal/server/repositories/tokens"
	"github.com/ekazakov/taskmate/internal/server/repositories/users"
)

// --- shared helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:     "test-secret",
		BcryptCost:    bcrypt.MinCost,
		ResetTokenTTL: time.Hour,
		ResetURLBase:  "http://localhost:8080/password/reset/confirm",
	}
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return string(hash)
}

// --- fake repositories ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error

	updateHashErr error
	updatedHash   string
	updatedID     int64
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	if f.updateHashErr != nil {
		return f.updateHashErr
	}
	f.updatedID = id
	f.updatedHash = hash
	return nil
}

type fakeTokensRepo struct {
	getOrCreateOut string
	getOrCreateErr error

	findOut *models.AuthToken
	findErr error

	deleteErr     error
	deletedUserID int64
}

func (f *fakeTokensRepo) GetOrCreate(ctx context.Context, userID int64, key string) (string, error) {
	if f.getOrCreateErr != nil {
		return "", f.getOrCreateErr
	}
	if f.getOrCreateOut != "" {
		return f.getOrCreateOut, nil
	}
	return key, nil
}

func (f *fakeTokensRepo) Find(ctx context.Context, key string) (*models.AuthToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeTokensRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedUserID = userID
	return nil
}

type fakeTasksRepo struct {
	createOut *models.Task
	createErr error

	listOut []*models.Task
	listErr error

	getOut *models.Task
	getErr error

	updateOut    *models.Task
	updateErr    error
	updateCalled bool

	deleteErr    error
	deleteCalled bool
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeTasksRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	f.updateCalled = true
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return task, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id int64) error {
	f.deleteCalled = true
	return f.deleteErr
}

type fakeRepoManager struct {
	users  *fakeUsersRepo
	tokens *fakeTokensRepo
	tasks  *fakeTasksRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:  &fakeUsersRepo{},
		tokens: &fakeTokensRepo{},
		tasks:  &fakeTasksRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) Tokens(db dbx.DBTX) tokens.Repository                { return m.tokens }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository                  { return m.tasks }

// --- fake mailer ---

// fakeMailer records sent emails and signals on a channel so tests can wait
// for the background send without sleeping.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []mailer.SendEmailParams
	sendErr error
	signal  chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{signal: make(chan struct{}, 4)}
}

func (f *fakeMailer) SendEmail(ctx context.Context, params mailer.SendEmailParams) error {
	f.mu.Lock()
	f.sent = append(f.sent, params)
	f.mu.Unlock()
	f.signal <- struct{}{}
	return f.sendErr
}

func (f *fakeMailer) sentParams() []mailer.SendEmailParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.SendEmailParams, len(f.sent))
	copy(out, f.sent)
	return out
}
