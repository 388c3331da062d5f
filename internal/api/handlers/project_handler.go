package handlers

import (
	"net/http"

	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/repository"
	"github.com/TWRT/pm-dashboard/internal/validation"
)

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
}

func NewProjectHandler(projectRepo *repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
	}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.GetProjects()
	if err != nil {
		writeFailure(w, r, "Error retrieving projects", err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	id, err := h.projectRepo.Create(&project)
	if err != nil {
		writeFailure(w, r, "Error creating a project", err)
		return
	}
	project.Id = int(id)
	writeJSON(w, http.StatusCreated, project)
}
