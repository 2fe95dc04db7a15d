package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/secondbrain/tracker/internal/models"
	"github.com/secondbrain/tracker/internal/validation"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskRepo database.TaskRepositoryInterface
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
}

// CreateTaskRequest represents a create task request. Omitted fields take
// their documented defaults; created_at may be supplied for backdating.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=500"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,task_status"`
	Priority    string     `json:"priority" validate:"omitempty,task_priority"`
	Project     string     `json:"project"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// UpdateTaskRequest represents an update task request
type UpdateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=500"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"required,task_status"`
	Priority    string     `json:"priority" validate:"omitempty,task_priority"`
	Project     string     `json:"project"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ListTasks lists tasks, optionally filtered by status, priority and project
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter := database.TaskFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateTaskStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		status := models.TaskStatus(s)
		filter.Status = &status
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		if err := validation.ValidateTaskPriority(p); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		priority := models.TaskPriority(p)
		filter.Priority = &priority
	}
	if proj := r.URL.Query().Get("project"); proj != "" {
		filter.Project = &proj
	}

	tasks, err := h.taskRepo.List(r.Context(), filter)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	task, err := h.taskRepo.Create(r.Context(), database.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		Project:     req.Project,
		DueDate:     req.DueDate,
		CreatedAt:   req.CreatedAt,
	})
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	task, err := h.taskRepo.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
		return
	}

	task, err := h.taskRepo.Update(r.Context(), id, database.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		Project:     req.Project,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task and its time logs
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	if err := h.taskRepo.Delete(r.Context(), id); err != nil {
		respondRepoError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
