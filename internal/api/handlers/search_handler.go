package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/repository"
)

type SearchHandler struct {
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
}

func NewSearchHandler(
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
) *SearchHandler {
	return &SearchHandler{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	var result models.SearchResult
	var g errgroup.Group
	g.Go(func() (err error) {
		result.Tasks, err = h.taskRepo.Search(query)
		return err
	})
	g.Go(func() (err error) {
		result.Projects, err = h.projectRepo.Search(query)
		return err
	})
	g.Go(func() (err error) {
		result.Users, err = h.userRepo.Search(query)
		return err
	})
	if err := g.Wait(); err != nil {
		writeFailure(w, r, "Error performing search", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
