package service

import (
	"github.com/TWRT/pm-dashboard/internal/client"
	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/validation"
)

type CreateProjectInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
}

func (in *CreateProjectInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	return validation.NormalizeDates(map[string]*string{
		"startDate": &in.StartDate,
		"endDate":   &in.EndDate,
	})
}

func (in CreateProjectInput) project() models.Project {
	return models.Project{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
}

type CreateTaskInput struct {
	Title          string          `json:"title" validate:"required"`
	AuthorUserId   *int            `json:"authorUserId" validate:"required"`
	Description    string          `json:"description,omitempty"`
	Status         models.Status   `json:"status,omitempty"`
	Priority       models.Priority `json:"priority,omitempty"`
	Tags           string          `json:"tags,omitempty"`
	StartDate      string          `json:"startDate,omitempty"`
	DueDate        string          `json:"dueDate,omitempty"`
	Points         *int            `json:"points,omitempty"`
	ProjectId      *int            `json:"projectId,omitempty"`
	AssignedUserId *int            `json:"assignedUserId,omitempty"`
}

func (in *CreateTaskInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	return validation.NormalizeDates(map[string]*string{
		"startDate": &in.StartDate,
		"dueDate":   &in.DueDate,
	})
}

func (in CreateTaskInput) task() models.Task {
	return models.Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.Status,
		Priority:       in.Priority,
		Tags:           in.Tags,
		StartDate:      in.StartDate,
		DueDate:        in.DueDate,
		Points:         in.Points,
		ProjectId:      in.ProjectId,
		AuthorUserId:   in.AuthorUserId,
		AssignedUserId: in.AssignedUserId,
	}
}

type UpdateTaskStatusInput struct {
	TaskId int           `json:"taskId"`
	Status models.Status `json:"status"`
}

func (in UpdateTaskStatusInput) Validate() error {
	if in.Status.Valid() {
		return nil
	}
	return &client.ValidationError{Fields: map[string]string{
		"status": "Status must be one of To Do, Work In Progress, Under Review, Completed",
	}}
}
