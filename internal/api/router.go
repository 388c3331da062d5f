package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/TWRT/pm-dashboard/internal/api/handlers"
	"github.com/TWRT/pm-dashboard/internal/repository"
)

// SetupRouter wires the reference project-management API over db. When
// token is non-empty every request must carry it as a bearer token.
func SetupRouter(db *sql.DB, token string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)

	projectHandler := handlers.NewProjectHandler(projectRepo)
	taskHandler := handlers.NewTaskHandler(taskRepo)
	userHandler := handlers.NewUserHandler(userRepo, teamRepo)
	searchHandler := handlers.NewSearchHandler(taskRepo, projectRepo, userRepo)

	mux.HandleFunc("GET /projects", projectHandler.GetProjects)
	mux.HandleFunc("POST /projects", projectHandler.CreateProject)

	mux.HandleFunc("GET /tasks", taskHandler.GetTasks)
	mux.HandleFunc("POST /tasks", taskHandler.CreateTask)
	mux.HandleFunc("GET /tasks/user/{userId}", taskHandler.GetUserTasks)
	mux.HandleFunc("PATCH /tasks/{id}/status", taskHandler.UpdateTaskStatus)

	mux.HandleFunc("GET /users", userHandler.GetUsers)
	mux.HandleFunc("GET /users/{cognitoId}", userHandler.GetUser)
	mux.HandleFunc("GET /teams", userHandler.GetTeams)

	mux.HandleFunc("GET /search", searchHandler.Search)

	var handler http.Handler = mux
	if token != "" {
		handler = requireToken(token, handler)
	}
	return logRequests(logger, handler)
}
