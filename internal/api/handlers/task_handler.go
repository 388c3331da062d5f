package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/repository"
	"github.com/TWRT/pm-dashboard/internal/validation"
)

type TaskHandler struct {
	taskRepo *repository.TaskRepository
}

func NewTaskHandler(taskRepo *repository.TaskRepository) *TaskHandler {
	return &TaskHandler{
		taskRepo: taskRepo,
	}
}

type createTaskRequest struct {
	Title          string          `json:"title" validate:"required"`
	AuthorUserId   *int            `json:"authorUserId" validate:"required"`
	Description    string          `json:"description"`
	Status         models.Status   `json:"status"`
	Priority       models.Priority `json:"priority"`
	Tags           string          `json:"tags"`
	StartDate      string          `json:"startDate"`
	DueDate        string          `json:"dueDate"`
	Points         *int            `json:"points"`
	ProjectId      *int            `json:"projectId"`
	AssignedUserId *int            `json:"assignedUserId"`
}

type updateStatusRequest struct {
	Status models.Status `json:"status"`
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	projectId, err := strconv.Atoi(r.URL.Query().Get("projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "projectId must be a number")
		return
	}
	tasks, err := h.taskRepo.GetByProject(projectId)
	if err != nil {
		writeFailure(w, r, "Error retrieving tasks", err)
		return
	}
	writeTasks(w, tasks)
}

func (h *TaskHandler) GetUserTasks(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "userId must be a number")
		return
	}
	tasks, err := h.taskRepo.GetByUser(userId)
	if err != nil {
		writeFailure(w, r, "Error retrieving user's tasks", err)
		return
	}
	writeTasks(w, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown status "+strconv.Quote(string(req.Status)))
		return
	}

	task := models.Task{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		Tags:           req.Tags,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		Points:         req.Points,
		ProjectId:      req.ProjectId,
		AuthorUserId:   req.AuthorUserId,
		AssignedUserId: req.AssignedUserId,
	}
	id, err := h.taskRepo.Create(&task)
	if errors.Is(err, repository.ErrInvalidReference) {
		writeError(w, http.StatusBadRequest, "Author, assignee or project does not exist")
		return
	}
	if err != nil {
		writeFailure(w, r, "Error creating a task", err)
		return
	}
	created, err := h.taskRepo.GetTask(id)
	if err != nil {
		writeFailure(w, r, "Error reading created task", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "task id must be a number")
		return
	}
	var req updateStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown status "+strconv.Quote(string(req.Status)))
		return
	}

	if err := h.taskRepo.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		writeFailure(w, r, "Error updating task", err)
		return
	}
	updated, err := h.taskRepo.GetTask(id)
	if err != nil {
		writeFailure(w, r, "Error reading updated task", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func writeTasks(w http.ResponseWriter, tasks []models.Task) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}
