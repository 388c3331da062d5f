package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TWRT/pm-dashboard/internal/cache"
	"github.com/TWRT/pm-dashboard/internal/client"
	"github.com/TWRT/pm-dashboard/internal/models"
)

// ErrSkipped is returned by Await for a query whose argument is not ready.
var ErrSkipped = errors.New("query skipped")

// Await waits for w to settle, releases it and returns its data.
func Await[T any](ctx context.Context, w *cache.Watch[T]) (T, error) {
	defer w.Unsubscribe()

	var zero T
	r, err := w.Wait(ctx)
	if err != nil {
		return zero, err
	}
	switch {
	case r.IsSkipped():
		return zero, ErrSkipped
	case r.IsError():
		return zero, r.Err
	}
	return r.Data, nil
}

type BoardColumn struct {
	Status models.Status `json:"status"`
	Count  int           `json:"count"`
	Tasks  []models.Task `json:"tasks"`
}

// BoardColumns groups tasks into one column per status, in workflow order.
// Tasks with an unknown status belong to no column.
func BoardColumns(tasks []models.Task) []BoardColumn {
	columns := make([]BoardColumn, len(models.Statuses))
	index := make(map[models.Status]int, len(models.Statuses))
	for i, status := range models.Statuses {
		columns[i] = BoardColumn{Status: status, Tasks: []models.Task{}}
		index[status] = i
	}
	for _, task := range tasks {
		i, ok := index[task.Status]
		if !ok {
			continue
		}
		columns[i].Tasks = append(columns[i].Tasks, task)
		columns[i].Count++
	}
	return columns
}

// ParsePriority accepts a priority name in any case, e.g. "urgent".
func ParsePriority(name string) (models.Priority, error) {
	for _, p := range models.Priorities {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", &client.ValidationError{Fields: map[string]string{
		"priority": "Priority must be one of Backlog, Low, Medium, High, Urgent",
	}}
}

func FilterByPriority(tasks []models.Task, priority models.Priority) []models.Task {
	out := []models.Task{}
	for _, task := range tasks {
		if strings.EqualFold(string(task.Priority), string(priority)) {
			out = append(out, task)
		}
	}
	return out
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

type ProjectStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

const (
	ProjectActive    = "Active"
	ProjectCompleted = "Completed"
)

// Summary is the home page overview: tasks per priority and projects by
// whether they have an end date.
type Summary struct {
	TaskPriorities  []PriorityCount      `json:"taskPriorities"`
	ProjectStatuses []ProjectStatusCount `json:"projectStatuses"`
}

// Summarize counts tasks per priority label and projects as Completed when
// they have an end date, Active otherwise. Empty groups are left out.
func Summarize(tasks []models.Task, projects []models.Project) Summary {
	counts := map[string]int{}
	for _, task := range tasks {
		counts[task.Priority.Label()]++
	}
	labels := make([]string, 0, len(models.Priorities)+1)
	for _, p := range models.Priorities {
		labels = append(labels, string(p))
	}
	labels = append(labels, models.Priority("").Label())

	summary := Summary{
		TaskPriorities:  []PriorityCount{},
		ProjectStatuses: []ProjectStatusCount{},
	}
	for _, label := range labels {
		if counts[label] > 0 {
			summary.TaskPriorities = append(summary.TaskPriorities, PriorityCount{Priority: label, Count: counts[label]})
		}
	}

	var active, completed int
	for _, project := range projects {
		if project.EndDate != "" {
			completed++
		} else {
			active++
		}
	}
	if active > 0 {
		summary.ProjectStatuses = append(summary.ProjectStatuses, ProjectStatusCount{Status: ProjectActive, Count: active})
	}
	if completed > 0 {
		summary.ProjectStatuses = append(summary.ProjectStatuses, ProjectStatusCount{Status: ProjectCompleted, Count: completed})
	}
	return summary
}

type TimelineItem struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func ProjectTimeline(projects []models.Project) []TimelineItem {
	items := make([]TimelineItem, 0, len(projects))
	for _, p := range projects {
		items = append(items, TimelineItem{
			Id:    "Project-" + strconv.Itoa(p.Id),
			Name:  p.Name,
			Type:  "project",
			Start: p.StartDate,
			End:   p.EndDate,
		})
	}
	sortByStart(items)
	return items
}

func TaskTimeline(tasks []models.Task) []TimelineItem {
	items := make([]TimelineItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, TimelineItem{
			Id:    "Task-" + strconv.Itoa(t.Id),
			Name:  t.Title,
			Type:  "task",
			Start: t.StartDate,
			End:   t.DueDate,
		})
	}
	sortByStart(items)
	return items
}

// sortByStart orders items by start date; undated items keep their order
// at the end.
func sortByStart(items []TimelineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, aok := parseDate(items[i].Start)
		b, bok := parseDate(items[j].Start)
		switch {
		case aok && bok:
			return a.Before(b)
		default:
			return aok && !bok
		}
	})
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Board returns the Kanban columns for a project.
func (s *DashboardService) Board(ctx context.Context, projectId int) ([]BoardColumn, error) {
	tasks, err := Await(ctx, s.Tasks(projectId))
	if err != nil {
		return nil, err
	}
	return BoardColumns(tasks), nil
}

// TasksByPriority lists the signed-in user's tasks with the given priority.
// The user's task list is skipped until the user record has an id.
func (s *DashboardService) TasksByPriority(ctx context.Context, priority models.Priority) ([]models.Task, error) {
	me, err := Await(ctx, s.AuthUser())
	if err != nil {
		return nil, err
	}
	userId := 0
	if me != nil && me.UserDetails != nil && me.UserDetails.UserId != nil {
		userId = *me.UserDetails.UserId
	}

	tasks, err := Await(ctx, s.TasksByUser(userId))
	if err != nil {
		return nil, fmt.Errorf("tasks of signed-in user: %w", err)
	}
	return FilterByPriority(tasks, priority), nil
}

// Summary builds the overview for one project's tasks and all projects.
func (s *DashboardService) Summary(ctx context.Context, projectId int) (Summary, error) {
	tasksWatch := s.Tasks(projectId)
	projectsWatch := s.Projects()
	defer projectsWatch.Unsubscribe()

	tasks, err := Await(ctx, tasksWatch)
	if err != nil {
		return Summary{}, err
	}
	projects, err := Await(ctx, projectsWatch)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tasks, projects), nil
}

// Timeline lists all projects by start date, or a project's tasks when
// projectId is set.
func (s *DashboardService) Timeline(ctx context.Context, projectId int) ([]TimelineItem, error) {
	if projectId > 0 {
		tasks, err := Await(ctx, s.Tasks(projectId))
		if err != nil {
			return nil, err
		}
		return TaskTimeline(tasks), nil
	}
	projects, err := Await(ctx, s.Projects())
	if err != nil {
		return nil, err
	}
	return ProjectTimeline(projects), nil
}
