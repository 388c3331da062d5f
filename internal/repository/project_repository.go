package repository

import (
	"database/sql"
	"fmt"

	"github.com/TWRT/pm-dashboard/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *models.Project) (int64, error) {
	query := `
	INSERT INTO projects (name, description, start_date, end_date)
        VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		project.Name,
		nullString(project.Description),
		nullString(project.StartDate),
		nullString(project.EndDate),
	)
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}

	return result.LastInsertId()
}

func (r *ProjectRepository) GetProjects() ([]models.Project, error) {
	return r.query(`SELECT id, name, description, start_date, end_date FROM projects ORDER BY id`)
}

func (r *ProjectRepository) Search(text string) ([]models.Project, error) {
	return r.query(`
		SELECT id, name, description, start_date, end_date FROM projects
		WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		ORDER BY id
	`, likePattern(text), likePattern(text))
}

func (r *ProjectRepository) query(query string, args ...any) ([]models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		var description, startDate, endDate sql.NullString
		if err := rows.Scan(&p.Id, &p.Name, &description, &startDate, &endDate); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Description = description.String
		p.StartDate = startDate.String
		p.EndDate = endDate.String
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}
