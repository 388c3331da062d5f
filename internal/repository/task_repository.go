package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/TWRT/pm-dashboard/internal/models"
)

var ErrNotFound = errors.New("not found")

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `
	t.id, t.title, t.description, t.status, t.priority, t.tags, t.start_date, t.due_date,
	t.points, t.project_id, t.author_user_id, t.assigned_user_id,
	a.user_id, a.username, a.email, a.profile_picture_url, a.cognito_id, a.team_id,
	s.user_id, s.username, s.email, s.profile_picture_url, s.cognito_id, s.team_id
	FROM tasks t
	LEFT JOIN users a ON a.user_id = t.author_user_id
	LEFT JOIN users s ON s.user_id = t.assigned_user_id
`

func (r *TaskRepository) Create(task *models.Task) (int64, error) {
	query := `
		INSERT INTO tasks (title, description, status, priority, tags, start_date, due_date,
			points, project_id, author_user_id, assigned_user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		task.Title,
		nullString(task.Description),
		nullString(string(task.Status)),
		nullString(string(task.Priority)),
		nullString(task.Tags),
		nullString(task.StartDate),
		nullString(task.DueDate),
		nullInt(task.Points),
		nullInt(task.ProjectId),
		nullInt(task.AuthorUserId),
		nullInt(task.AssignedUserId),
	)
	if isForeignKeyViolation(err) {
		return 0, fmt.Errorf("create task: %w: author, assignee or project does not exist", ErrInvalidReference)
	}
	if err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	return result.LastInsertId()
}

func (r *TaskRepository) GetTask(id int64) (models.Task, error) {
	tasks, err := r.query(`SELECT `+taskColumns+` WHERE t.id = ?`, id)
	if err != nil {
		return models.Task{}, err
	}
	if len(tasks) == 0 {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return tasks[0], nil
}

func (r *TaskRepository) GetByProject(projectId int) ([]models.Task, error) {
	return r.query(`SELECT `+taskColumns+` WHERE t.project_id = ? ORDER BY t.id`, projectId)
}

// GetByUser returns tasks the user authored or is assigned to.
func (r *TaskRepository) GetByUser(userId int) ([]models.Task, error) {
	return r.query(`SELECT `+taskColumns+`
		WHERE t.author_user_id = ? OR t.assigned_user_id = ?
		ORDER BY t.id`, userId, userId)
}

func (r *TaskRepository) Search(text string) ([]models.Task, error) {
	return r.query(`SELECT `+taskColumns+`
		WHERE t.title LIKE ? ESCAPE '\' OR t.description LIKE ? ESCAPE '\'
		ORDER BY t.id`, likePattern(text), likePattern(text))
}

func (r *TaskRepository) UpdateStatus(id int64, status models.Status) error {
	result, err := r.db.Exec(`UPDATE tasks SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task status rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	return nil
}

type nullableUser struct {
	UserId            sql.NullInt64
	Username          sql.NullString
	Email             sql.NullString
	ProfilePictureUrl sql.NullString
	CognitoId         sql.NullString
	TeamId            sql.NullInt64
}

func (u nullableUser) user() *models.User {
	if !u.UserId.Valid {
		return nil
	}
	return &models.User{
		UserId:            intPtr(u.UserId),
		Username:          u.Username.String,
		Email:             u.Email.String,
		ProfilePictureUrl: u.ProfilePictureUrl.String,
		CognitoId:         u.CognitoId.String,
		TeamId:            intPtr(u.TeamId),
	}
}

func (r *TaskRepository) query(query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		var description, status, priority, tags, startDate, dueDate sql.NullString
		var points, projectId, authorId, assigneeId sql.NullInt64
		var author, assignee nullableUser

		err := rows.Scan(
			&t.Id, &t.Title, &description, &status, &priority, &tags, &startDate, &dueDate,
			&points, &projectId, &authorId, &assigneeId,
			&author.UserId, &author.Username, &author.Email, &author.ProfilePictureUrl, &author.CognitoId, &author.TeamId,
			&assignee.UserId, &assignee.Username, &assignee.Email, &assignee.ProfilePictureUrl, &assignee.CognitoId, &assignee.TeamId,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		t.Description = description.String
		t.Status = models.Status(status.String)
		t.Priority = models.Priority(priority.String)
		t.Tags = tags.String
		t.StartDate = startDate.String
		t.DueDate = dueDate.String
		t.Points = intPtr(points)
		t.ProjectId = intPtr(projectId)
		t.AuthorUserId = intPtr(authorId)
		t.AssignedUserId = intPtr(assigneeId)
		t.Author = author.user()
		t.Assignee = assignee.user()
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
