package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ekazakov/taskmate/internal/common"
	"github.com/ekazakov/taskmate/internal/server/models"
	"github.com/ekazakov/taskmate/internal/server/repositories/repomanager"
)

// TaskService provides owner-scoped task operations. Every method takes the
// authenticated user id explicitly; there is no ambient request state.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTaskService constructs a TaskService over the given repositories.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// CanAccess reports whether the user may operate on the task. Only the owner
// may; there is deliberately no staff or admin bypass.
func (s *TaskService) CanAccess(userID int64, task *models.Task) bool {
	return task.UserID == userID
}

// Create stores a new task owned by userID. The owner comes from the
// authenticated identity, never from client input.
func (s *TaskService) Create(ctx context.Context, userID int64, title, description string) (*models.Task, error) {
	task, err := s.repomanager.Tasks(s.db).Create(ctx, &models.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

// List returns the user's tasks in creation order.
func (s *TaskService) List(ctx context.Context, userID int64) ([]*models.Task, error) {
	result, err := s.repomanager.Tasks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return result, nil
}

// get loads a task and enforces ownership: common.ErrorNotFound when the id
// does not exist, common.ErrorForbidden when it belongs to someone else.
func (s *TaskService) get(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.CanAccess(userID, task) {
		return nil, common.ErrorForbidden
	}
	return task, nil
}

// Get returns the task if it exists and userID owns it.
func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	return s.get(ctx, userID, taskID)
}

// Update replaces the task's title and description (full replacement
// semantics) after the ownership check.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, title, description string) (*models.Task, error) {
	task, err := s.get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = description

	task, err = s.repomanager.Tasks(s.db).Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error updating task: %w", err)
	}
	return task, nil
}

// Delete removes the task after the ownership check.
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if _, err := s.get(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.repomanager.Tasks(s.db).Delete(ctx, taskID); err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	return nil
}
