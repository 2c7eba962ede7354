package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekazakov/taskmate/internal/logging"
	"github.com/ekazakov/taskmate/internal/server/models"
)

type fakeUserService struct {
	registerToken string
	registerErr   error
	loginToken    string
	loginErr      error
	logoutErr     error
	changeErr     error
	resetErr      error
	confirmErr    error
	authUser      *models.User
	authErr       error

	lastEmail    string
	lastPassword string
	lastKey      string
}

func (f *fakeUserService) Register(_ context.Context, email, password string) (string, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.registerToken, f.registerErr
}

func (f *fakeUserService) Login(_ context.Context, email, password string) (string, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.loginToken, f.loginErr
}

func (f *fakeUserService) Logout(_ context.Context, _ int64) error {
	return f.logoutErr
}

func (f *fakeUserService) ChangePassword(_ context.Context, _ int64, _, _ string) error {
	return f.changeErr
}

func (f *fakeUserService) RequestPasswordReset(_ context.Context, email string) error {
	f.lastEmail = email
	return f.resetErr
}

func (f *fakeUserService) ConfirmPasswordReset(_ context.Context, _, _ string) error {
	return f.confirmErr
}

func (f *fakeUserService) Authenticate(_ context.Context, key string) (*models.User, error) {
	f.lastKey = key
	return f.authUser, f.authErr
}

type fakeTaskService struct {
	task      *models.Task
	tasks     []*models.Task
	createErr error
	listErr   error
	getErr    error
	updateErr error
	deleteErr error

	lastUserID int64
	lastTaskID int64
}

func (f *fakeTaskService) Create(_ context.Context, userID int64, _, _ string) (*models.Task, error) {
	f.lastUserID = userID
	return f.task, f.createErr
}

func (f *fakeTaskService) List(_ context.Context, userID int64) ([]*models.Task, error) {
	f.lastUserID = userID
	return f.tasks, f.listErr
}

func (f *fakeTaskService) Get(_ context.Context, userID, taskID int64) (*models.Task, error) {
	f.lastUserID, f.lastTaskID = userID, taskID
	return f.task, f.getErr
}

func (f *fakeTaskService) Update(_ context.Context, userID, taskID int64, _, _ string) (*models.Task, error) {
	f.lastUserID, f.lastTaskID = userID, taskID
	return f.task, f.updateErr
}

func (f *fakeTaskService) Delete(_ context.Context, userID, taskID int64) error {
	f.lastUserID, f.lastTaskID = userID, taskID
	return f.deleteErr
}

func newTestServer(us UserService, ts TaskService) *Server {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", logger, us, ts, nil, Timeouts{})
}

// doJSON runs a request through the full router so middleware applies too.
func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func authedUser() *models.User {
	return &models.User{ID: 7, Email: "owner@example.com"}
}
