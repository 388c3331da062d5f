package client

import (
	"context"

	"github.com/TWRT/pm-dashboard/internal/models"
)

type ProjectClient interface {
	GetProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, project models.Project) (*models.Project, error)
}

type TaskClient interface {
	GetTasks(ctx context.Context, projectId int) ([]models.Task, error)
	GetTasksByUser(ctx context.Context, userId int) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, taskId int, status models.Status) (*models.Task, error)
}

type MemberProvider interface {
	GetUsers(ctx context.Context) ([]models.User, error)
}

type TeamProvider interface {
	GetTeams(ctx context.Context) ([]models.Team, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) (*models.SearchResult, error)
}

type AuthUserProvider interface {
	GetAuthUser(ctx context.Context) (*models.AuthUser, error)
}

// Gateway is the full set of remote resource actions the dashboard uses.
type Gateway interface {
	ProjectClient
	TaskClient
	MemberProvider
	TeamProvider
	Searcher
	AuthUserProvider
}
