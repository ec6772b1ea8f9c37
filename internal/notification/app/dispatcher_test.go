package app

import (
	"context"
	"testing"

	"subtitle_platform_service/internal/notification/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender 收集 handler 轉出來的 payload
type recordingSender struct {
	teamIDs []uint
	urls    []string
	data    []map[string]interface{}
}

func (r *recordingSender) SendNotification(teamID uint, url string, data map[string]interface{}) {
	r.teamIDs = append(r.teamIDs, teamID)
	r.urls = append(r.urls, url)
	r.data = append(r.data, data)
}

func settingsFor(teamID uint, settingsType string) *domain.TeamNotificationSettings {
	return &domain.TeamNotificationSettings{TeamID: teamID, Type: settingsType, URL: "http://example.com/hook"}
}

func TestDispatcherNoSettingsNoSend(t *testing.T) {
	ledger := newFakeLedger()
	sender := &recordingSender{}
	d := NewDispatcher(ledger, DefaultRegistry(), sender)

	d.VideoAdded(context.Background(), 1, domain.VideoInfo{VideoID: "abc"}, nil)

	assert.Empty(t, sender.data)
}

func TestDispatcherUnknownTypeNoSend(t *testing.T) {
	ledger := newFakeLedger()
	ledger.UpsertSettings(context.Background(), settingsFor(1, "desktop-popup"))
	sender := &recordingSender{}
	d := NewDispatcher(ledger, DefaultRegistry(), sender)

	d.VideoAdded(context.Background(), 1, domain.VideoInfo{VideoID: "abc"}, nil)

	assert.Empty(t, sender.data)
}

func TestDispatcherSendsVideoEvents(t *testing.T) {
	ledger := newFakeLedger()
	ledger.UpsertSettings(context.Background(), settingsFor(1, TypeGenericWebhook))
	sender := &recordingSender{}
	d := NewDispatcher(ledger, DefaultRegistry(), sender)

	from := uint(9)
	d.VideoAdded(context.Background(), 1, domain.VideoInfo{VideoID: "abc", Title: "T", Language: "en"}, &from)

	require.Len(t, sender.data, 1)
	assert.Equal(t, uint(1), sender.teamIDs[0])
	assert.Equal(t, "http://example.com/hook", sender.urls[0])

	payload := sender.data[0]
	assert.Equal(t, "video-added", payload["event"])
	assert.Equal(t, "abc", payload["video_id"])
	assert.Equal(t, "T", payload["title"])
	assert.Equal(t, "en", payload["language"])
	assert.Equal(t, uint(9), payload["old_team"])
}

func TestDispatcherVideoRemovedCarriesDestination(t *testing.T) {
	ledger := newFakeLedger()
	ledger.UpsertSettings(context.Background(), settingsFor(1, TypeGenericWebhook))
	sender := &recordingSender{}
	d := NewDispatcher(ledger, DefaultRegistry(), sender)

	to := uint(4)
	d.VideoRemoved(context.Background(), 1, domain.VideoInfo{VideoID: "abc"}, &to)

	require.Len(t, sender.data, 1)
	assert.Equal(t, "video-removed", sender.data[0]["event"])
	assert.Equal(t, uint(4), sender.data[0]["new_team"])
}

func TestDispatcherSubtitleEvents(t *testing.T) {
	ledger := newFakeLedger()
	ledger.UpsertSettings(context.Background(), settingsFor(1, TypeGenericWebhook))
	sender := &recordingSender{}
	d := NewDispatcher(ledger, DefaultRegistry(), sender)

	video := domain.VideoInfo{VideoID: "abc"}
	d.SubtitlesAdded(context.Background(), 1, video, domain.SubtitleVersionInfo{Language: "fr", Version: 3})
	d.SubtitlesPublished(context.Background(), 1, video, "fr")
	d.SubtitlesDeleted(context.Background(), 1, video, "fr")

	require.Len(t, sender.data, 3)
	assert.Equal(t, "subtitles-added", sender.data[0]["event"])
	assert.Equal(t, "fr", sender.data[0]["subtitle_language"])
	assert.Equal(t, 3, sender.data[0]["subtitle_version"])
	assert.Equal(t, "subtitles-published", sender.data[1]["event"])
	assert.Equal(t, "subtitles-deleted", sender.data[2]["event"])
}

func TestDispatcherUserEvents(t *testing.T) {
	ledger := newFakeLedger()
	ledger.UpsertSettings(context.Background(), settingsFor(1, TypeGenericWebhook))
	sender := &recordingSender{}
	d := NewDispatcher(ledger, DefaultRegistry(), sender)

	user := domain.UserInfo{UserID: "u1", Email: "a@b.c", DisplayName: "A"}
	d.UserAdded(context.Background(), 1, user)
	d.UserRemoved(context.Background(), 1, user)
	d.UserInfoUpdated(context.Background(), 1, user)

	require.Len(t, sender.data, 3)
	assert.Equal(t, "user-added", sender.data[0]["event"])
	assert.Equal(t, "u1", sender.data[0]["user_id"])
	assert.Equal(t, "user-removed", sender.data[1]["event"])
	assert.Equal(t, "user-info-updated", sender.data[2]["event"])
}

// panicHandler 每個事件都直接 panic
type panicHandler struct{}

func (panicHandler) OnVideoAdded(domain.VideoInfo, *uint) error   { panic("boom") }
func (panicHandler) OnVideoRemoved(domain.VideoInfo, *uint) error { panic("boom") }
func (panicHandler) OnSubtitlesAdded(domain.VideoInfo, domain.SubtitleVersionInfo) error {
	panic("boom")
}
func (panicHandler) OnSubtitlesPublished(domain.VideoInfo, string) error { panic("boom") }
func (panicHandler) OnSubtitlesDeleted(domain.VideoInfo, string) error   { panic("boom") }
func (panicHandler) OnUserAdded(domain.UserInfo) error                   { panic("boom") }
func (panicHandler) OnUserRemoved(domain.UserInfo) error                 { panic("boom") }
func (panicHandler) OnUserInfoUpdated(domain.UserInfo) error             { panic("boom") }

func TestDispatcherSwallowsHandlerPanic(t *testing.T) {
	ledger := newFakeLedger()
	ledger.UpsertSettings(context.Background(), settingsFor(1, "panicky"))
	registry := NewRegistry(map[string]HandlerFactory{
		"panicky": func(*domain.TeamNotificationSettings, Sender) domain.Handler { return panicHandler{} },
	})
	d := NewDispatcher(ledger, registry, &recordingSender{})

	assert.NotPanics(t, func() {
		d.VideoAdded(context.Background(), 1, domain.VideoInfo{VideoID: "abc"}, nil)
		d.UserAdded(context.Background(), 1, domain.UserInfo{UserID: "u1"})
	})
}

func TestRegistryCopiesFactoryMap(t *testing.T) {
	factories := map[string]HandlerFactory{
		TypeGenericWebhook: NewWebhookHandler,
	}
	registry := NewRegistry(factories)

	// 事後改原 map 不影響 registry
	factories["late-addition"] = NewWebhookHandler
	_, ok := registry.Lookup("late-addition")
	assert.False(t, ok)

	_, ok = registry.Lookup(TypeGenericWebhook)
	assert.True(t, ok)
}
