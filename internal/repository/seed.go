package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/TWRT/pm-dashboard/internal/models"
)

// Seed fills an empty database with a small demo workspace. It does nothing
// when projects already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if count > 0 {
		return nil
	}

	teams := NewTeamRepository(db)
	users := NewUserRepository(db)
	projects := NewProjectRepository(db)
	tasks := NewTaskRepository(db)

	teamId, err := teams.Create(&models.Team{Name: "Platform"})
	if err != nil {
		return err
	}

	var userIds []int
	for _, name := range []string{"alice", "bob", "carol"} {
		id, err := users.Create(&models.User{
			CognitoId:         uuid.NewString(),
			Username:          name,
			Email:             name + "@example.com",
			ProfilePictureUrl: "p" + name + ".jpeg",
			TeamId:            models.IntPtr(int(teamId)),
		})
		if err != nil {
			return err
		}
		userIds = append(userIds, int(id))
	}

	projectId, err := projects.Create(&models.Project{
		Name:        "Apollo",
		Description: "Dashboard rewrite",
		StartDate:   "2024-01-01T00:00:00Z",
		EndDate:     "2024-06-30T00:00:00Z",
	})
	if err != nil {
		return err
	}

	seedTasks := []models.Task{
		{Title: "Design schema", Status: models.StatusCompleted, Priority: models.PriorityHigh, Tags: "db,design"},
		{Title: "Build gateway", Status: models.StatusWorkInProgress, Priority: models.PriorityUrgent, Tags: "api"},
		{Title: "Kanban board", Status: models.StatusToDo, Priority: models.PriorityMedium},
		{Title: "Review timeline", Status: models.StatusUnderReview, Priority: models.PriorityLow},
	}
	for i, task := range seedTasks {
		task.ProjectId = models.IntPtr(int(projectId))
		task.AuthorUserId = models.IntPtr(userIds[0])
		task.AssignedUserId = models.IntPtr(userIds[(i+1)%len(userIds)])
		task.Points = models.IntPtr(i + 1)
		if _, err := tasks.Create(&task); err != nil {
			return err
		}
	}
	return nil
}
