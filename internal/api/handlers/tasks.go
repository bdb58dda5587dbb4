package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/raminkz/gotodo/internal/api/dto"
	"github.com/raminkz/gotodo/internal/api/middleware"
	"github.com/raminkz/gotodo/internal/auth"
	"github.com/raminkz/gotodo/internal/database/models"
	"github.com/raminkz/gotodo/internal/todo"
)

// TaskHandler enforces owner-or-read-only over the task store: anonymous
// read, owner-only write.
type TaskHandler struct {
	store       *todo.Store
	authService *auth.Service
}

func NewTaskHandler(store *todo.Store, authService *auth.Service) *TaskHandler {
	return &TaskHandler{store: store, authService: authService}
}

func taskToResponse(task *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:        task.ID.String(),
		Owner:     task.ProfileID.String(),
		Title:     task.Title,
		Complete:  task.Complete,
		CreatedAt: task.CreatedAt.Format(time.RFC3339),
		UpdatedAt: task.UpdatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	params := todo.ListParams{
		Title:    r.URL.Query().Get("title"),
		Search:   r.URL.Query().Get("search"),
		Ordering: r.URL.Query().Get("ordering"),
		Offset:   pagination.Offset(),
		Limit:    pagination.PerPage,
	}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid owner ID"})
			return
		}
		params.OwnerID = id
	}

	tasks, total, err := h.store.List(r.Context(), params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to list tasks"})
		return
	}

	response := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = taskToResponse(&tasks[i])
	}

	totalPages := int(total) / pagination.PerPage
	if int(total)%pagination.PerPage > 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       response,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: totalPages,
	})
}

// Get handles GET /api/v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// Create handles POST /api/v1/tasks. The owner is always the caller's
// profile; a client-supplied owner field never reaches the store.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to resolve profile"})
		return
	}

	task, err := h.store.Create(r.Context(), profile.ID, req.Title)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to create task"})
		return
	}

	writeJSON(w, http.StatusCreated, taskToResponse(task))
}

// Update handles PUT and PATCH on /api/v1/tasks/{id}. PUT requires the
// title; PATCH touches only the fields that were sent.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if !h.requireOwner(w, r, task) {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	partial := r.Method == http.MethodPatch
	var errs map[string]string
	if partial {
		errs = req.ValidatePartial()
	} else {
		errs = req.ValidateFull()
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Validation failed", Errors: errs})
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Complete != nil {
		task.Complete = *req.Complete
	} else if !partial {
		task.Complete = false
	}

	if err := h.store.Update(r.Context(), task); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to update task"})
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if !h.requireOwner(w, r, task) {
		return
	}

	if err := h.store.Delete(r.Context(), task.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to delete task"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid task ID"})
		return nil, false
	}

	task, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, todo.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Detail: "Task not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Failed to load task"})
		return nil, false
	}

	return task, true
}

// requireOwner resolves ownership once per request: the task's profile
// must belong to the authenticated user.
func (h *TaskHandler) requireOwner(w http.ResponseWriter, r *http.Request, task *models.Task) bool {
	principal, _ := middleware.GetPrincipal(r.Context())

	if task.Profile == nil || task.Profile.UserID != principal.UserID {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{
			Detail: "You do not have permission to perform this action.",
		})
		return false
	}
	return true
}
