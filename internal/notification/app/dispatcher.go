package app

import (
	"context"
	"fmt"

	"subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/notification/repository"
	"subtitle_platform_service/pkg/logger"

	"go.uber.org/zap"
)

// Dispatcher resolves the team's settings and handler, then calls the event
// method synchronously. Handler faults are logged and swallowed so that the
// business action raising the event is never rolled back by a bad webhook
// integration.
type Dispatcher struct {
	repo     repository.NotificationRepository
	registry *Registry
	sender   Sender
}

// NewDispatcher create a Dispatcher
func NewDispatcher(repo repository.NotificationRepository, registry *Registry, sender Sender) *Dispatcher {
	return &Dispatcher{repo: repo, registry: registry, sender: sender}
}

func (d *Dispatcher) handlerForTeam(ctx context.Context, teamID uint) (domain.Handler, bool) {
	settings, err := d.repo.GetSettings(ctx, teamID)
	if err != nil {
		if err != domain.ErrNoSettings {
			logger.Log.Error("notification settings lookup failed",
				zap.Uint("team_id", teamID), zap.Error(err))
		}
		return nil, false
	}

	factory, ok := d.registry.Lookup(settings.Type)
	if !ok {
		logger.Log.Warn("unknown notification handler type",
			zap.Uint("team_id", teamID), zap.String("type", settings.Type))
		return nil, false
	}

	return factory(settings, d.sender), true
}

func (d *Dispatcher) safeCall(teamID uint, event string, call func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("notification handler panicked",
				zap.Uint("team_id", teamID), zap.String("event", event),
				zap.String("panic", fmt.Sprintf("%v", r)))
		}
	}()

	if err := call(); err != nil {
		logger.Log.Error("notification handler failed",
			zap.Uint("team_id", teamID), zap.String("event", event), zap.Error(err))
	}
}

// VideoAdded implements domain.EventDispatcher
func (d *Dispatcher) VideoAdded(ctx context.Context, teamID uint, video domain.VideoInfo, fromTeamID *uint) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "video-added", func() error { return handler.OnVideoAdded(video, fromTeamID) })
	}
}

// VideoRemoved implements domain.EventDispatcher
func (d *Dispatcher) VideoRemoved(ctx context.Context, teamID uint, video domain.VideoInfo, toTeamID *uint) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "video-removed", func() error { return handler.OnVideoRemoved(video, toTeamID) })
	}
}

// SubtitlesAdded implements domain.EventDispatcher
func (d *Dispatcher) SubtitlesAdded(ctx context.Context, teamID uint, video domain.VideoInfo, version domain.SubtitleVersionInfo) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "subtitles-added", func() error { return handler.OnSubtitlesAdded(video, version) })
	}
}

// SubtitlesPublished implements domain.EventDispatcher
func (d *Dispatcher) SubtitlesPublished(ctx context.Context, teamID uint, video domain.VideoInfo, language string) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "subtitles-published", func() error { return handler.OnSubtitlesPublished(video, language) })
	}
}

// SubtitlesDeleted implements domain.EventDispatcher
func (d *Dispatcher) SubtitlesDeleted(ctx context.Context, teamID uint, video domain.VideoInfo, language string) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "subtitles-deleted", func() error { return handler.OnSubtitlesDeleted(video, language) })
	}
}

// UserAdded implements domain.EventDispatcher
func (d *Dispatcher) UserAdded(ctx context.Context, teamID uint, user domain.UserInfo) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "user-added", func() error { return handler.OnUserAdded(user) })
	}
}

// UserRemoved implements domain.EventDispatcher
func (d *Dispatcher) UserRemoved(ctx context.Context, teamID uint, user domain.UserInfo) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "user-removed", func() error { return handler.OnUserRemoved(user) })
	}
}

// UserInfoUpdated implements domain.EventDispatcher
func (d *Dispatcher) UserInfoUpdated(ctx context.Context, teamID uint, user domain.UserInfo) {
	if handler, ok := d.handlerForTeam(ctx, teamID); ok {
		d.safeCall(teamID, "user-info-updated", func() error { return handler.OnUserInfoUpdated(user) })
	}
}
