package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subtitle_platform_service/internal/notification/domain"
)

const uniqueViolationCode = "23505"

// maxNumberAttempts bounds the assign-number retry loop
const maxNumberAttempts = 5

var schema = []string{
	`CREATE TABLE IF NOT EXISTS team_notification_settings(
		id BIGSERIAL PRIMARY KEY,
		team_id BIGINT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		url TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_notification(
		id BIGSERIAL PRIMARY KEY,
		team_id BIGINT NOT NULL,
		number INT,
		url TEXT NOT NULL,
		data TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		response_status INT,
		error_message TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS team_notification_team_number
		ON team_notification(team_id, number) WHERE number IS NOT NULL`,
}

// NotificationRepository definition settings lookup and the delivery ledger
type NotificationRepository interface {
	Migrate(ctx context.Context) error

	GetSettings(ctx context.Context, teamID uint) (*domain.TeamNotificationSettings, error)
	UpsertSettings(ctx context.Context, settings *domain.TeamNotificationSettings) error

	Create(ctx context.Context, notification *domain.TeamNotification) error
	AssignNumber(ctx context.Context, notification *domain.TeamNotification) error
	RecordOutcome(ctx context.Context, notification *domain.TeamNotification) error
	NextNumberForTeam(ctx context.Context, teamID uint) (int, error)
	ListByTeam(ctx context.Context, teamID uint, limit int) ([]domain.TeamNotification, error)
	GetByTeamAndNumber(ctx context.Context, teamID uint, number int) (*domain.TeamNotification, error)
}

type notificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository create a NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) GetSettings(ctx context.Context, teamID uint) (*domain.TeamNotificationSettings, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, team_id, type, url FROM team_notification_settings WHERE team_id = $1", teamID)

	var s domain.TeamNotificationSettings
	if err := row.Scan(&s.ID, &s.TeamID, &s.Type, &s.URL); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNoSettings
		}
		return nil, err
	}
	return &s, nil
}

func (r *notificationRepository) UpsertSettings(ctx context.Context, settings *domain.TeamNotificationSettings) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO team_notification_settings(team_id, type, url) VALUES ($1, $2, $3)
		 ON CONFLICT (team_id) DO UPDATE SET type = EXCLUDED.type, url = EXCLUDED.url`,
		settings.TeamID, settings.Type, settings.URL)
	return err
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.TeamNotification) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO team_notification(team_id, url, data, timestamp) VALUES ($1, $2, $3, $4) RETURNING id`,
		notification.TeamID, notification.URL, notification.Data, notification.Timestamp)
	return row.Scan(&notification.ID)
}

// AssignNumber reserves the next per-team number for a persisted notification.
// Two concurrent reservations for one team can both read the same max, so the
// partial unique index on (team_id, number) arbitrates: the loser retries with
// a fresh read instead of surfacing an integrity error.
func (r *notificationRepository) AssignNumber(ctx context.Context, notification *domain.TeamNotification) error {
	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		next, err := r.NextNumberForTeam(ctx, notification.TeamID)
		if err != nil {
			return err
		}

		_, err = r.db.Exec(ctx,
			"UPDATE team_notification SET number = $1 WHERE id = $2", next, notification.ID)
		if err == nil {
			notification.Number = &next
			return nil
		}

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("assign notification number: gave up after %d attempts: %w", maxNumberAttempts, lastErr)
}

func (r *notificationRepository) RecordOutcome(ctx context.Context, notification *domain.TeamNotification) error {
	_, err := r.db.Exec(ctx,
		"UPDATE team_notification SET response_status = $1, error_message = $2 WHERE id = $3",
		notification.ResponseStatus, notification.ErrorMessage, notification.ID)
	return err
}

func (r *notificationRepository) NextNumberForTeam(ctx context.Context, teamID uint) (int, error) {
	row := r.db.QueryRow(ctx,
		"SELECT COALESCE(MAX(number), 0) + 1 FROM team_notification WHERE team_id = $1", teamID)
	var next int
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *notificationRepository) ListByTeam(ctx context.Context, teamID uint, limit int) ([]domain.TeamNotification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, team_id, number, url, data, timestamp, response_status, error_message
		 FROM team_notification WHERE team_id = $1 ORDER BY number DESC NULLS LAST LIMIT $2`,
		teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.TeamNotification
	for rows.Next() {
		var n domain.TeamNotification
		if err := rows.Scan(&n.ID, &n.TeamID, &n.Number, &n.URL, &n.Data, &n.Timestamp,
			&n.ResponseStatus, &n.ErrorMessage); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) GetByTeamAndNumber(ctx context.Context, teamID uint, number int) (*domain.TeamNotification, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, team_id, number, url, data, timestamp, response_status, error_message
		 FROM team_notification WHERE team_id = $1 AND number = $2`,
		teamID, number)

	var n domain.TeamNotification
	if err := row.Scan(&n.ID, &n.TeamID, &n.Number, &n.URL, &n.Data, &n.Timestamp,
		&n.ResponseStatus, &n.ErrorMessage); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}
