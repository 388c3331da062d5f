package pmapi

import "github.com/TWRT/pm-dashboard/internal/models"

type ErrorResponse struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

func (e ErrorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err
}

type UpdateTaskStatusRequest struct {
	Status models.Status `json:"status"`
}
