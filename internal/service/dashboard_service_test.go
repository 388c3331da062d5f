package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/TWRT/pm-dashboard/internal/cache"
	"github.com/TWRT/pm-dashboard/internal/client"
	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/service"
)

// fakeGateway is an in-memory backend that counts every call by operation.
type fakeGateway struct {
	mu       sync.Mutex
	calls    map[string]int
	projects []models.Project
	tasks    map[int]models.Task
	nextId   int
	// block, when set, holds GetTasks until it is closed
	block chan struct{}
	// authUser, when set, is the signed-in user
	authUser *models.AuthUser
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls:  map[string]int{},
		tasks:  map[int]models.Task{},
		nextId: 100,
	}
}

func (g *fakeGateway) record(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
}

func (g *fakeGateway) count(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) addTask(task models.Task) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tasks[task.Id] = task
}

func (g *fakeGateway) filter(keep func(models.Task) bool) []models.Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.Task
	for _, task := range g.tasks {
		if keep(task) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (g *fakeGateway) GetProjects(ctx context.Context) ([]models.Project, error) {
	g.record("getProjects")
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Project(nil), g.projects...), nil
}

func (g *fakeGateway) CreateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	g.record("createProject")
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextId++
	project.Id = g.nextId
	g.projects = append(g.projects, project)
	return &project, nil
}

func (g *fakeGateway) GetTasks(ctx context.Context, projectId int) ([]models.Task, error) {
	g.record(fmt.Sprintf("getTasks(%d)", projectId))
	if g.block != nil {
		<-g.block
	}
	return g.filter(func(t models.Task) bool {
		return t.ProjectId != nil && *t.ProjectId == projectId
	}), nil
}

func (g *fakeGateway) GetTasksByUser(ctx context.Context, userId int) ([]models.Task, error) {
	g.record(fmt.Sprintf("getTasksByUser(%d)", userId))
	return g.filter(func(t models.Task) bool {
		return (t.AuthorUserId != nil && *t.AuthorUserId == userId) ||
			(t.AssignedUserId != nil && *t.AssignedUserId == userId)
	}), nil
}

func (g *fakeGateway) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	g.record("createTask")
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextId++
	task.Id = g.nextId
	g.tasks[task.Id] = task
	return &task, nil
}

func (g *fakeGateway) UpdateTaskStatus(ctx context.Context, taskId int, status models.Status) (*models.Task, error) {
	g.record("updateTaskStatus")
	g.mu.Lock()
	defer g.mu.Unlock()
	task, ok := g.tasks[taskId]
	if !ok {
		return nil, &client.NetworkError{Op: "update task status", StatusCode: 404}
	}
	task.Status = status
	g.tasks[taskId] = task
	return &task, nil
}

func (g *fakeGateway) GetUsers(ctx context.Context) ([]models.User, error) {
	g.record("getUsers")
	return []models.User{{UserId: models.IntPtr(1), Username: "ana"}}, nil
}

func (g *fakeGateway) GetTeams(ctx context.Context) ([]models.Team, error) {
	g.record("getTeams")
	return []models.Team{{Id: 1, Name: "core"}}, nil
}

func (g *fakeGateway) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	g.record("search")
	return &models.SearchResult{Tasks: g.filter(func(t models.Task) bool { return t.Title == query })}, nil
}

func (g *fakeGateway) GetAuthUser(ctx context.Context) (*models.AuthUser, error) {
	g.record("getAuthUser")
	if g.authUser != nil {
		return g.authUser, nil
	}
	return nil, &client.AuthError{Message: "No session found"}
}

func task(id, projectId, authorId int, status models.Status) models.Task {
	return models.Task{
		Id:           id,
		Title:        fmt.Sprintf("task %d", id),
		Status:       status,
		ProjectId:    models.IntPtr(projectId),
		AuthorUserId: models.IntPtr(authorId),
	}
}

func newService(t *testing.T) (*service.DashboardService, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	c := cache.New(cache.Options{})
	t.Cleanup(c.Close)
	return service.NewDashboardService(gw, c), gw
}

func wait[T any](t *testing.T, w *cache.Watch[T]) cache.Result[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r, err := w.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait(%s): %v", w.Key(), err)
	}
	return r
}

func statuses(tasks []models.Task) map[int]models.Status {
	out := map[int]models.Status{}
	for _, task := range tasks {
		out[task.Id] = task.Status
	}
	return out
}

func TestUpdateTaskStatusRefetchesOnlyListsContainingTask(t *testing.T) {
	svc, gw := newService(t)
	gw.addTask(task(7, 1, 42, models.StatusToDo))
	gw.addTask(task(8, 2, 42, models.StatusToDo))

	projectOne := svc.Tasks(1)
	projectTwo := svc.Tasks(2)
	wait(t, projectOne)
	wait(t, projectTwo)

	if _, err := svc.UpdateTaskStatus(context.Background(), 7, models.StatusUnderReview); err != nil {
		t.Fatalf("UpdateTaskStatus() error = %v", err)
	}

	r := wait(t, projectOne)
	if got := statuses(r.Data)[7]; got != models.StatusUnderReview {
		t.Errorf("task 7 status = %q, want %q", got, models.StatusUnderReview)
	}
	if got := gw.count("getTasks(1)"); got != 2 {
		t.Errorf("getTasks(1) calls = %d, want 2", got)
	}
	if got := gw.count("getTasks(2)"); got != 1 {
		t.Errorf("getTasks(2) calls = %d, want 1 (must stay fresh)", got)
	}
	if projectTwo.Result().Stale {
		t.Errorf("project 2 list marked stale")
	}
}

func TestUpdateTaskStatusRefreshesUserTasks(t *testing.T) {
	svc, gw := newService(t)
	gw.addTask(task(7, 1, 42, models.StatusToDo))
	gw.addTask(task(9, 1, 42, models.StatusCompleted))

	mine := svc.TasksByUser(42)
	r := wait(t, mine)
	if want := (map[int]models.Status{7: models.StatusToDo, 9: models.StatusCompleted}); fmt.Sprint(statuses(r.Data)) != fmt.Sprint(want) {
		t.Fatalf("initial statuses = %v, want %v", statuses(r.Data), want)
	}

	if _, err := svc.UpdateTaskStatus(context.Background(), 7, models.StatusWorkInProgress); err != nil {
		t.Fatalf("UpdateTaskStatus() error = %v", err)
	}

	r = wait(t, mine)
	want := map[int]models.Status{7: models.StatusWorkInProgress, 9: models.StatusCompleted}
	if fmt.Sprint(statuses(r.Data)) != fmt.Sprint(want) {
		t.Errorf("statuses = %v, want %v", statuses(r.Data), want)
	}
	if got := gw.count("getTasksByUser(42)"); got != 2 {
		t.Errorf("getTasksByUser(42) calls = %d, want 2", got)
	}
}

func TestCreateTaskInvalidatesEveryTaskQuery(t *testing.T) {
	svc, gw := newService(t)
	gw.addTask(task(7, 1, 42, models.StatusToDo))

	watches := []*cache.Watch[[]models.Task]{
		svc.Tasks(1),
		svc.Tasks(2), // empty list, tagged at resource level
		svc.TasksByUser(42),
		svc.TasksByUser(5), // empty list, tagged with the user id
	}
	for _, w := range watches {
		wait(t, w)
	}
	projects := svc.Projects()
	wait(t, projects)

	created, err := svc.CreateTask(context.Background(), service.CreateTaskInput{
		Title:        "T",
		AuthorUserId: models.IntPtr(3),
		ProjectId:    models.IntPtr(2),
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.Title != "T" {
		t.Errorf("created.Title = %q", created.Title)
	}

	for _, w := range watches {
		wait(t, w)
	}
	for _, op := range []string{"getTasks(1)", "getTasks(2)", "getTasksByUser(42)", "getTasksByUser(5)"} {
		if got := gw.count(op); got != 2 {
			t.Errorf("%s calls = %d, want 2", op, got)
		}
	}
	if got := gw.count("getProjects"); got != 1 {
		t.Errorf("getProjects calls = %d, want 1", got)
	}
	if r := watches[1].Result(); len(r.Data) != 1 {
		t.Errorf("project 2 tasks = %v, want the new task", r.Data)
	}
}

func TestCreateTaskDuringFirstLoad(t *testing.T) {
	svc, gw := newService(t)
	gw.addTask(task(7, 1, 42, models.StatusToDo))
	gw.block = make(chan struct{})

	list := svc.Tasks(1)
	if _, err := svc.CreateTask(context.Background(), service.CreateTaskInput{
		Title:        "late",
		AuthorUserId: models.IntPtr(42),
		ProjectId:    models.IntPtr(1),
	}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	close(gw.block)

	r := wait(t, list)
	if len(r.Data) != 2 {
		t.Errorf("tasks = %v, want the created task included", r.Data)
	}
	if got := gw.count("getTasks(1)"); got != 2 {
		t.Errorf("getTasks(1) calls = %d, want 2", got)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc, gw := newService(t)

	_, err := svc.CreateTask(context.Background(), service.CreateTaskInput{
		Title:        "",
		AuthorUserId: models.IntPtr(3),
	})
	if !client.IsValidationError(err) {
		t.Fatalf("CreateTask() error = %v, want validation error", err)
	}
	if got := gw.count("createTask"); got != 0 {
		t.Errorf("createTask calls = %d, want 0", got)
	}

	_, err = svc.CreateTask(context.Background(), service.CreateTaskInput{Title: "T"})
	if !client.IsValidationError(err) {
		t.Errorf("missing author error = %v, want validation error", err)
	}
}

func TestCreateTaskNormalizesDates(t *testing.T) {
	svc, gw := newService(t)

	created, err := svc.CreateTask(context.Background(), service.CreateTaskInput{
		Title:        "T",
		AuthorUserId: models.IntPtr(3),
		StartDate:    "2024-05-01",
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.StartDate != "2024-05-01T00:00:00Z" {
		t.Errorf("StartDate = %q, want ISO timestamp", created.StartDate)
	}
	if got := gw.count("createTask"); got != 1 {
		t.Errorf("createTask calls = %d, want 1", got)
	}
}

func TestCreateProjectInvalidatesProjects(t *testing.T) {
	svc, gw := newService(t)

	projects := svc.Projects()
	if r := wait(t, projects); len(r.Data) != 0 {
		t.Fatalf("initial projects = %v", r.Data)
	}

	_, err := svc.CreateProject(context.Background(), service.CreateProjectInput{
		Name:        "Apollo",
		Description: "moon",
		StartDate:   "2024-01-01",
		EndDate:     "2024-12-31",
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	r := wait(t, projects)
	if len(r.Data) != 1 || r.Data[0].Name != "Apollo" {
		t.Errorf("projects = %v, want Apollo", r.Data)
	}
	if got := gw.count("getProjects"); got != 2 {
		t.Errorf("getProjects calls = %d, want 2", got)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	svc, gw := newService(t)

	tests := []struct {
		name string
		in   service.CreateProjectInput
	}{
		{"missing name", service.CreateProjectInput{Description: "d", StartDate: "2024-01-01", EndDate: "2024-01-02"}},
		{"missing dates", service.CreateProjectInput{Name: "n", Description: "d"}},
		{"bad date", service.CreateProjectInput{Name: "n", Description: "d", StartDate: "later", EndDate: "2024-01-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProject(context.Background(), tt.in); !client.IsValidationError(err) {
				t.Errorf("CreateProject() error = %v, want validation error", err)
			}
		})
	}
	if got := gw.count("createProject"); got != 0 {
		t.Errorf("createProject calls = %d, want 0", got)
	}
}

func TestUpdateTaskStatusRejectsUnknownStatus(t *testing.T) {
	svc, gw := newService(t)
	if _, err := svc.UpdateTaskStatus(context.Background(), 7, "Done-ish"); !client.IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
	if got := gw.count("updateTaskStatus"); got != 0 {
		t.Errorf("updateTaskStatus calls = %d, want 0", got)
	}
}

func TestConcurrentTaskSubscriptionsShareOneCall(t *testing.T) {
	svc, gw := newService(t)
	gw.block = make(chan struct{})
	gw.addTask(task(7, 1, 42, models.StatusToDo))

	a := svc.Tasks(1)
	b := svc.Tasks(1)
	close(gw.block)

	ra, rb := wait(t, a), wait(t, b)
	if len(ra.Data) != 1 || len(rb.Data) != 1 {
		t.Errorf("results = %v / %v", ra.Data, rb.Data)
	}
	if got := gw.count("getTasks(1)"); got != 1 {
		t.Errorf("getTasks(1) calls = %d, want 1", got)
	}
}

func TestSearchSkipsShortQueries(t *testing.T) {
	svc, gw := newService(t)

	for _, q := range []string{"", "a", "ab"} {
		r := svc.Search(q).Result()
		if !r.IsSkipped() || r.IsLoading() || r.IsError() {
			t.Errorf("Search(%q) = %+v, want skipped", q, r)
		}
	}
	if got := gw.count("search"); got != 0 {
		t.Errorf("search calls = %d, want 0", got)
	}

	r := wait(t, svc.Search("abc"))
	if !r.IsSuccess() {
		t.Errorf("Search(abc) = %+v, want success", r)
	}
	if got := gw.count("search"); got != 1 {
		t.Errorf("search calls = %d, want 1", got)
	}
}

func TestTasksByUserSkippedWithoutUser(t *testing.T) {
	svc, gw := newService(t)
	if r := svc.TasksByUser(0).Result(); !r.IsSkipped() {
		t.Errorf("TasksByUser(0) = %+v, want skipped", r)
	}
	if got := gw.count("getTasksByUser(0)"); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestAuthUserErrorIsQueryState(t *testing.T) {
	svc, _ := newService(t)

	r := wait(t, svc.AuthUser())
	if !r.IsError() || !client.IsAuthError(r.Err) {
		t.Errorf("AuthUser() = %+v, want auth error state", r)
	}
}

func TestUsersAndTeams(t *testing.T) {
	svc, gw := newService(t)

	if r := wait(t, svc.Users()); len(r.Data) != 1 {
		t.Errorf("users = %v", r.Data)
	}
	if r := wait(t, svc.Teams()); len(r.Data) != 1 {
		t.Errorf("teams = %v", r.Data)
	}
	wait(t, svc.Users())
	if got := gw.count("getUsers"); got != 1 {
		t.Errorf("getUsers calls = %d, want 1", got)
	}
}
