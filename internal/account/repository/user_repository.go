package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subtitle_platform_service/internal/account/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id           BIGSERIAL PRIMARY KEY,
		user_id      TEXT NOT NULL UNIQUE,
		email        TEXT NOT NULL UNIQUE,
		password     TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		status       INT NOT NULL DEFAULT 0
	)`,
}

// UserRepository definition get User info
type UserRepository interface {
	Migrate(ctx context.Context) error
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUserStatus(ctx context.Context, user *domain.User) error
	UpdateUserInfo(ctx context.Context, user *domain.User) error
	FindByUser(ctx context.Context, userQuery *domain.UserQuery) (*domain.User, error)
}

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository create a UserRepository
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO accounts(user_id, email, password, display_name, is_superuser) VALUES ($1, $2, $3, $4, $5)",
		user.UserID, user.Email, user.Password, user.DisplayName, user.IsSuperuser)
	return err
}

func (r *userRepository) UpdateUserStatus(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, "UPDATE accounts SET status = $1 WHERE user_id = $2", user.Status, user.UserID)
	return err
}

func (r *userRepository) UpdateUserInfo(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx,
		"UPDATE accounts SET email = $1, display_name = $2 WHERE user_id = $3",
		user.Email, user.DisplayName, user.UserID)
	return err
}

func (r *userRepository) FindByUser(ctx context.Context, userQuery *domain.UserQuery) (*domain.User, error) {
	queryStr := "SELECT id, user_id, email, password, display_name, is_superuser, status FROM accounts WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if userQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *userQuery.Email)
		paramCount++
	}
	if userQuery.UserID != nil {
		queryStr += fmt.Sprintf(" AND user_id = $%d", paramCount)
		params = append(params, *userQuery.UserID)
		paramCount++
	}
	if userQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *userQuery.ID)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var user domain.User
	err := row.Scan(&user.ID, &user.UserID, &user.Email, &user.Password,
		&user.DisplayName, &user.IsSuperuser, &user.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}
