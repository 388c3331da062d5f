package models

import "strings"

type Status string

const (
	StatusToDo           Status = "To Do"
	StatusWorkInProgress Status = "Work In Progress"
	StatusUnderReview    Status = "Under Review"
	StatusCompleted      Status = "Completed"
)

var Statuses = []Status{
	StatusToDo,
	StatusWorkInProgress,
	StatusUnderReview,
	StatusCompleted,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label is the display form; absent or unknown values read "Unknown".
func (s Status) Label() string {
	if !s.Valid() {
		return "Unknown"
	}
	return string(s)
}

type Priority string

const (
	PriorityBacklog Priority = "Backlog"
	PriorityLow     Priority = "Low"
	PriorityMedium  Priority = "Medium"
	PriorityHigh    Priority = "High"
	PriorityUrgent  Priority = "Urgent"
)

var Priorities = []Priority{
	PriorityBacklog,
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityUrgent,
}

func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

func (p Priority) Label() string {
	if !p.Valid() {
		return "Unknown"
	}
	return string(p)
}

type Comment struct {
	Id     int    `json:"id"`
	Text   string `json:"text"`
	TaskId int    `json:"taskId"`
	UserId int    `json:"userId"`
}

type Attachment struct {
	Id           int    `json:"id"`
	FileURL      string `json:"fileURL"`
	FileName     string `json:"fileName"`
	TaskId       int    `json:"taskId"`
	UploadedById int    `json:"uploadedById"`
}

type Task struct {
	Id             int          `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Status         Status       `json:"status,omitempty"`
	Priority       Priority     `json:"priority,omitempty"`
	Tags           string       `json:"tags,omitempty"`
	StartDate      string       `json:"startDate,omitempty"`
	DueDate        string       `json:"dueDate,omitempty"`
	Points         *int         `json:"points,omitempty"`
	ProjectId      *int         `json:"projectId,omitempty"`
	AuthorUserId   *int         `json:"authorUserId,omitempty"`
	AssignedUserId *int         `json:"assignedUserId,omitempty"`
	Author         *User        `json:"author,omitempty"`
	Assignee       *User        `json:"assignee,omitempty"`
	Comments       []Comment    `json:"comments,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// TagList splits the comma-joined Tags field.
func (t Task) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(t.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
