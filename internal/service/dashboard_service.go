package service

import (
	"context"

	"github.com/TWRT/pm-dashboard/internal/cache"
	"github.com/TWRT/pm-dashboard/internal/client"
	"github.com/TWRT/pm-dashboard/internal/models"
)

// DashboardService is what views talk to: cached queries they subscribe to
// and mutations that keep those queries current.
type DashboardService struct {
	cache     *cache.Cache
	endpoints endpoints
}

func NewDashboardService(gateway client.Gateway, c *cache.Cache) *DashboardService {
	return &DashboardService{
		cache:     c,
		endpoints: newEndpoints(gateway),
	}
}

func (s *DashboardService) Projects() *cache.Watch[[]models.Project] {
	return s.endpoints.projects.Subscribe(s.cache, none{})
}

func (s *DashboardService) Tasks(projectId int) *cache.Watch[[]models.Task] {
	return s.endpoints.tasks.Subscribe(s.cache, projectId)
}

// TasksByUser is skipped while userId is not known (zero or negative).
func (s *DashboardService) TasksByUser(userId int) *cache.Watch[[]models.Task] {
	return s.endpoints.tasksByUser.Subscribe(s.cache, userId)
}

func (s *DashboardService) Users() *cache.Watch[[]models.User] {
	return s.endpoints.users.Subscribe(s.cache, none{})
}

func (s *DashboardService) Teams() *cache.Watch[[]models.Team] {
	return s.endpoints.teams.Subscribe(s.cache, none{})
}

// Search is skipped for queries shorter than MinSearchLength.
func (s *DashboardService) Search(query string) *cache.Watch[*models.SearchResult] {
	return s.endpoints.search.Subscribe(s.cache, query)
}

func (s *DashboardService) AuthUser() *cache.Watch[*models.AuthUser] {
	return s.endpoints.authUser.Subscribe(s.cache, none{})
}

func (s *DashboardService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	return s.endpoints.createProject.Run(ctx, s.cache, Invalidations, in)
}

func (s *DashboardService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	return s.endpoints.createTask.Run(ctx, s.cache, Invalidations, in)
}

// UpdateTaskStatus only refreshes queries that returned taskId.
func (s *DashboardService) UpdateTaskStatus(ctx context.Context, taskId int, status models.Status) (*models.Task, error) {
	in := UpdateTaskStatusInput{TaskId: taskId, Status: status}
	return s.endpoints.updateTaskStatus.Run(ctx, s.cache, Invalidations, in)
}
