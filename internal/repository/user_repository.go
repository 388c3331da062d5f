package repository

import (
	"database/sql"
	"fmt"

	"github.com/TWRT/pm-dashboard/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) (int64, error) {
	query := `
		INSERT INTO users (cognito_id, username, email, profile_picture_url, team_id)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		user.CognitoId,
		user.Username,
		user.Email,
		nullString(user.ProfilePictureUrl),
		nullInt(user.TeamId),
	)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return result.LastInsertId()
}

func (r *UserRepository) GetUsers() ([]models.User, error) {
	return r.query(`SELECT user_id, username, email, profile_picture_url, cognito_id, team_id FROM users ORDER BY user_id`)
}

func (r *UserRepository) GetByCognitoId(cognitoId string) (models.User, error) {
	users, err := r.query(`
		SELECT user_id, username, email, profile_picture_url, cognito_id, team_id
		FROM users WHERE cognito_id = ?
	`, cognitoId)
	if err != nil {
		return models.User{}, err
	}
	if len(users) == 0 {
		return models.User{}, fmt.Errorf("get user %s: %w", cognitoId, ErrNotFound)
	}
	return users[0], nil
}

func (r *UserRepository) Search(text string) ([]models.User, error) {
	return r.query(`
		SELECT user_id, username, email, profile_picture_url, cognito_id, team_id
		FROM users WHERE username LIKE ? ESCAPE '\'
		ORDER BY user_id
	`, likePattern(text))
}

func (r *UserRepository) query(query string, args ...any) ([]models.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u nullableUser
		if err := rows.Scan(&u.UserId, &u.Username, &u.Email, &u.ProfilePictureUrl, &u.CognitoId, &u.TeamId); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u.user())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
