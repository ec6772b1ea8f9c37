package app

import (
	"subtitle_platform_service/internal/notification/domain"
)

// TypeGenericWebhook settings type of the stock JSON webhook handler
const TypeGenericWebhook = "generic-webhook"

// Sender hands a formatted payload to the delivery subsystem. Implementations
// are fire-and-forget: the ledger records the eventual outcome.
type Sender interface {
	SendNotification(teamID uint, url string, data map[string]interface{})
}

// webhookHandler formats every event as a flat JSON object and forwards it
type webhookHandler struct {
	settings *domain.TeamNotificationSettings
	sender   Sender
}

// NewWebhookHandler create the generic webhook Handler
func NewWebhookHandler(settings *domain.TeamNotificationSettings, sender Sender) domain.Handler {
	return &webhookHandler{settings: settings, sender: sender}
}

func (h *webhookHandler) send(data map[string]interface{}) {
	h.sender.SendNotification(h.settings.TeamID, h.settings.URL, data)
}

func videoFields(event string, video domain.VideoInfo) map[string]interface{} {
	return map[string]interface{}{
		"event":    event,
		"video_id": video.VideoID,
		"title":    video.Title,
		"language": video.Language,
	}
}

func userFields(event string, user domain.UserInfo) map[string]interface{} {
	return map[string]interface{}{
		"event":        event,
		"user_id":      user.UserID,
		"email":        user.Email,
		"display_name": user.DisplayName,
	}
}

func (h *webhookHandler) OnVideoAdded(video domain.VideoInfo, fromTeamID *uint) error {
	data := videoFields("video-added", video)
	if fromTeamID != nil {
		data["old_team"] = *fromTeamID
	}
	h.send(data)
	return nil
}

func (h *webhookHandler) OnVideoRemoved(video domain.VideoInfo, toTeamID *uint) error {
	data := videoFields("video-removed", video)
	if toTeamID != nil {
		data["new_team"] = *toTeamID
	}
	h.send(data)
	return nil
}

func (h *webhookHandler) OnSubtitlesAdded(video domain.VideoInfo, version domain.SubtitleVersionInfo) error {
	data := videoFields("subtitles-added", video)
	data["subtitle_language"] = version.Language
	data["subtitle_version"] = version.Version
	h.send(data)
	return nil
}

func (h *webhookHandler) OnSubtitlesPublished(video domain.VideoInfo, language string) error {
	data := videoFields("subtitles-published", video)
	data["subtitle_language"] = language
	h.send(data)
	return nil
}

func (h *webhookHandler) OnSubtitlesDeleted(video domain.VideoInfo, language string) error {
	data := videoFields("subtitles-deleted", video)
	data["subtitle_language"] = language
	h.send(data)
	return nil
}

func (h *webhookHandler) OnUserAdded(user domain.UserInfo) error {
	h.send(userFields("user-added", user))
	return nil
}

func (h *webhookHandler) OnUserRemoved(user domain.UserInfo) error {
	h.send(userFields("user-removed", user))
	return nil
}

func (h *webhookHandler) OnUserInfoUpdated(user domain.UserInfo) error {
	h.send(userFields("user-info-updated", user))
	return nil
}
