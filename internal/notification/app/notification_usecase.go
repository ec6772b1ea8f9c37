package app

import (
	"context"
	"encoding/json"
	"fmt"

	"subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/notification/repository"
)

// NotificationUseCase 對外提供設定與 ledger 查詢
type NotificationUseCase interface {
	UpdateSettings(ctx context.Context, teamID uint, settingsType, url string) error
	GetSettings(ctx context.Context, teamID uint) (*domain.TeamNotificationSettings, error)
	ListNotifications(ctx context.Context, teamID uint, limit int) ([]domain.TeamNotification, error)
	Resend(ctx context.Context, teamID uint, number int) error
}

type notificationUseCase struct {
	repo     repository.NotificationRepository
	registry *Registry
	sender   Sender
}

// NewNotificationUseCase create a NotificationUseCase
func NewNotificationUseCase(repo repository.NotificationRepository, registry *Registry, sender Sender) NotificationUseCase {
	return &notificationUseCase{repo: repo, registry: registry, sender: sender}
}

func (n *notificationUseCase) UpdateSettings(ctx context.Context, teamID uint, settingsType, url string) error {
	if _, ok := n.registry.Lookup(settingsType); !ok {
		return fmt.Errorf("unknown notification type %q", settingsType)
	}
	return n.repo.UpsertSettings(ctx, &domain.TeamNotificationSettings{
		TeamID: teamID,
		Type:   settingsType,
		URL:    url,
	})
}

func (n *notificationUseCase) GetSettings(ctx context.Context, teamID uint) (*domain.TeamNotificationSettings, error) {
	return n.repo.GetSettings(ctx, teamID)
}

func (n *notificationUseCase) ListNotifications(ctx context.Context, teamID uint, limit int) ([]domain.TeamNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	return n.repo.ListByTeam(ctx, teamID, limit)
}

// Resend enqueues the recorded team/url/data again. The repeat delivery
// reserves a fresh number, the original ledger row is untouched.
func (n *notificationUseCase) Resend(ctx context.Context, teamID uint, number int) error {
	notification, err := n.repo.GetByTeamAndNumber(ctx, teamID, number)
	if err != nil {
		return err
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(notification.Data), &data); err != nil {
		return fmt.Errorf("decode recorded notification data: %w", err)
	}

	n.sender.SendNotification(notification.TeamID, notification.URL, data)
	return nil
}
