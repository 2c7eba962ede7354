package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ekazakov/taskmate/internal/server/models"
)

// titleMaxLen matches the tasks.title column bound.
const titleMaxLen = 100

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r taskRequest) validate() fieldErrors {
	ferrs := fieldErrors{}
	ferrs.requireNonBlank("title", r.Title)
	ferrs.requireNonBlank("description", r.Description)
	ferrs.requireMaxLen("title", r.Title, titleMaxLen)
	return ferrs
}

type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	User        int64     `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		User:        t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// taskIDFromRequest parses the {id} route parameter. A non-numeric id is
// indistinguishable from a missing task, so both map to 404.
func taskIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
		return
	}

	tasks, err := s.tasks.List(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, newTaskResponse(t))
	}
	s.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
		return
	}

	var req taskRequest
	decodeJSON(r, &req)

	if ferrs := req.validate(); len(ferrs) > 0 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, ferrs)
		return
	}

	task, err := s.tasks.Create(r.Context(), user.ID, req.Title, req.Description)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusCreated, newTaskResponse(task))
}

func (s *Server) handleTaskRetrieve(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
		return
	}

	taskID, ok := taskIDFromRequest(r)
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusNotFound, msgNotFound)
		return
	}

	task, err := s.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, newTaskResponse(task))
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
		return
	}

	taskID, ok := taskIDFromRequest(r)
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusNotFound, msgNotFound)
		return
	}

	var req taskRequest
	decodeJSON(r, &req)

	if ferrs := req.validate(); len(ferrs) > 0 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, ferrs)
		return
	}

	task, err := s.tasks.Update(r.Context(), user.ID, taskID, req.Title, req.Description)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, newTaskResponse(task))
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
		return
	}

	taskID, ok := taskIDFromRequest(r)
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := s.tasks.Delete(r.Context(), user.ID, taskID); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
