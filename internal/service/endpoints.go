package service

import (
	"context"
	"unicode/utf8"

	"github.com/TWRT/pm-dashboard/internal/cache"
	"github.com/TWRT/pm-dashboard/internal/client"
	"github.com/TWRT/pm-dashboard/internal/models"
)

const MinSearchLength = 3

const (
	MutationCreateProject    = "createProject"
	MutationCreateTask       = "createTask"
	MutationUpdateTaskStatus = "updateTaskStatus"
)

// Invalidations is the complete mutation -> invalidated tags table.
var Invalidations = cache.InvalidationTable{
	MutationCreateProject:    {{Type: cache.TagProjects}},
	MutationCreateTask:       {{Type: cache.TagTasks}},
	MutationUpdateTaskStatus: {{Type: cache.TagTasks, ByID: true}},
}

type none struct{}

type endpoints struct {
	projects    cache.Query[none, []models.Project]
	tasks       cache.Query[int, []models.Task]
	tasksByUser cache.Query[int, []models.Task]
	users       cache.Query[none, []models.User]
	teams       cache.Query[none, []models.Team]
	search      cache.Query[string, *models.SearchResult]
	authUser    cache.Query[none, *models.AuthUser]

	createProject    cache.Mutation[CreateProjectInput, *models.Project]
	createTask       cache.Mutation[CreateTaskInput, *models.Task]
	updateTaskStatus cache.Mutation[UpdateTaskStatusInput, *models.Task]
}

func taskID(t models.Task) int { return t.Id }

func newEndpoints(gw client.Gateway) endpoints {
	return endpoints{
		projects: cache.Query[none, []models.Project]{
			Name: "getProjects",
			Fetch: func(ctx context.Context, _ none) ([]models.Project, error) {
				return gw.GetProjects(ctx)
			},
			ProvidesTags: func([]models.Project, error, none) []cache.Tag {
				return []cache.Tag{cache.TypeTag(cache.TagProjects)}
			},
		},
		tasks: cache.Query[int, []models.Task]{
			Name: "getTasks",
			Fetch: func(ctx context.Context, projectId int) ([]models.Task, error) {
				return gw.GetTasks(ctx, projectId)
			},
			ProvidesTags: func(result []models.Task, _ error, _ int) []cache.Tag {
				return cache.ListTags(cache.TagTasks, result, taskID, cache.TypeTag(cache.TagTasks))
			},
		},
		tasksByUser: cache.Query[int, []models.Task]{
			Name: "getTasksByUser",
			Fetch: func(ctx context.Context, userId int) ([]models.Task, error) {
				return gw.GetTasksByUser(ctx, userId)
			},
			ProvidesTags: func(result []models.Task, _ error, userId int) []cache.Tag {
				return cache.ListTags(cache.TagTasks, result, taskID, cache.IDTag(cache.TagTasks, userId))
			},
			Skip: func(userId int) bool { return userId <= 0 },
		},
		users: cache.Query[none, []models.User]{
			Name: "getUsers",
			Fetch: func(ctx context.Context, _ none) ([]models.User, error) {
				return gw.GetUsers(ctx)
			},
			ProvidesTags: func([]models.User, error, none) []cache.Tag {
				return []cache.Tag{cache.TypeTag(cache.TagUsers)}
			},
		},
		teams: cache.Query[none, []models.Team]{
			Name: "getTeams",
			Fetch: func(ctx context.Context, _ none) ([]models.Team, error) {
				return gw.GetTeams(ctx)
			},
			ProvidesTags: func([]models.Team, error, none) []cache.Tag {
				return []cache.Tag{cache.TypeTag(cache.TagTeams)}
			},
		},
		search: cache.Query[string, *models.SearchResult]{
			Name: "search",
			Fetch: func(ctx context.Context, query string) (*models.SearchResult, error) {
				return gw.Search(ctx, query)
			},
			Skip:      func(query string) bool { return utf8.RuneCountInString(query) < MinSearchLength },
			Ephemeral: true,
		},
		authUser: cache.Query[none, *models.AuthUser]{
			Name: "getAuthUser",
			Fetch: func(ctx context.Context, _ none) (*models.AuthUser, error) {
				return gw.GetAuthUser(ctx)
			},
		},

		createProject: cache.Mutation[CreateProjectInput, *models.Project]{
			Kind: MutationCreateProject,
			Prepare: func(in CreateProjectInput) (CreateProjectInput, error) {
				err := in.Validate()
				return in, err
			},
			Do: func(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
				return gw.CreateProject(ctx, in.project())
			},
		},
		createTask: cache.Mutation[CreateTaskInput, *models.Task]{
			Kind: MutationCreateTask,
			Prepare: func(in CreateTaskInput) (CreateTaskInput, error) {
				err := in.Validate()
				return in, err
			},
			Do: func(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
				return gw.CreateTask(ctx, in.task())
			},
		},
		updateTaskStatus: cache.Mutation[UpdateTaskStatusInput, *models.Task]{
			Kind: MutationUpdateTaskStatus,
			Prepare: func(in UpdateTaskStatusInput) (UpdateTaskStatusInput, error) {
				err := in.Validate()
				return in, err
			},
			Do: func(ctx context.Context, in UpdateTaskStatusInput) (*models.Task, error) {
				return gw.UpdateTaskStatus(ctx, in.TaskId, in.Status)
			},
			ID: func(in UpdateTaskStatusInput) int { return in.TaskId },
		},
	}
}
