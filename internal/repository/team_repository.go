package repository

import (
	"database/sql"
	"fmt"

	"github.com/TWRT/pm-dashboard/internal/models"
)

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(team *models.Team) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO teams (name, product_owner_user_id, project_manager_user_id) VALUES (?, ?, ?)`,
		team.Name,
		nullInt(team.ProductOwnerUserId),
		nullInt(team.ProjectManagerUserId),
	)
	if err != nil {
		return 0, fmt.Errorf("create team: %w", err)
	}
	return result.LastInsertId()
}

func (r *TeamRepository) GetTeams() ([]models.Team, error) {
	rows, err := r.db.Query(`SELECT id, name, product_owner_user_id, project_manager_user_id FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("get teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var t models.Team
		var owner, manager sql.NullInt64
		if err := rows.Scan(&t.Id, &t.Name, &owner, &manager); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.ProductOwnerUserId = intPtr(owner)
		t.ProjectManagerUserId = intPtr(manager)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return teams, nil
}
