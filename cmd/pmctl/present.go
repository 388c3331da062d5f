package main

import (
	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/service"
)

// taskView is a task as printed: tags split and picture URLs resolved.
type taskView struct {
	models.Task
	TagList []string `json:"tagList,omitempty"`
}

type boardColumnView struct {
	Status models.Status `json:"status"`
	Count  int           `json:"count"`
	Tasks  []taskView    `json:"tasks"`
}

// present rewrites values for output. Types it does not know pass through.
func present(v any) any {
	switch v := v.(type) {
	case []models.Task:
		return presentTasks(v)
	case *models.Task:
		if v == nil {
			return v
		}
		return presentTask(*v)
	case []models.User:
		users := make([]models.User, 0, len(v))
		for _, u := range v {
			users = append(users, presentUser(u))
		}
		return users
	case *models.SearchResult:
		if v == nil {
			return v
		}
		users := make([]models.User, 0, len(v.Users))
		for _, u := range v.Users {
			users = append(users, presentUser(u))
		}
		return struct {
			Tasks    []taskView       `json:"tasks"`
			Projects []models.Project `json:"projects"`
			Users    []models.User    `json:"users"`
		}{presentTasks(v.Tasks), v.Projects, users}
	case *models.AuthUser:
		if v == nil || v.UserDetails == nil {
			return v
		}
		resolved := *v
		details := presentUser(*v.UserDetails)
		resolved.UserDetails = &details
		return resolved
	case []service.BoardColumn:
		columns := make([]boardColumnView, 0, len(v))
		for _, c := range v {
			columns = append(columns, boardColumnView{Status: c.Status, Count: c.Count, Tasks: presentTasks(c.Tasks)})
		}
		return columns
	default:
		return v
	}
}

func presentTasks(tasks []models.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, presentTask(t))
	}
	return out
}

func presentTask(t models.Task) taskView {
	if t.Author != nil {
		author := presentUser(*t.Author)
		t.Author = &author
	}
	if t.Assignee != nil {
		assignee := presentUser(*t.Assignee)
		t.Assignee = &assignee
	}
	return taskView{Task: t, TagList: t.TagList()}
}

func presentUser(u models.User) models.User {
	u.ProfilePictureUrl = models.ImageURL(u.ProfilePictureUrl)
	return u
}
