package domain

import "context"

// VideoInfo 事件中攜帶的影片欄位
type VideoInfo struct {
	VideoID  string
	Title    string
	Language string
}

// SubtitleVersionInfo subtitle version fields carried in events
type SubtitleVersionInfo struct {
	Language string
	Version  int
}

// UserInfo user fields carried in events
type UserInfo struct {
	UserID      string
	Email       string
	DisplayName string
}

// Handler translates domain events into outbound webhook payloads for one
// team. One implementation per settings type.
type Handler interface {
	OnVideoAdded(video VideoInfo, fromTeamID *uint) error
	OnVideoRemoved(video VideoInfo, toTeamID *uint) error
	OnSubtitlesAdded(video VideoInfo, version SubtitleVersionInfo) error
	OnSubtitlesPublished(video VideoInfo, language string) error
	OnSubtitlesDeleted(video VideoInfo, language string) error
	OnUserAdded(user UserInfo) error
	OnUserRemoved(user UserInfo) error
	OnUserInfoUpdated(user UserInfo) error
}

// EventDispatcher is called synchronously by the business modules. A failing
// handler must never abort the operation that raised the event, so every
// method is fire-and-forget from the caller's point of view.
type EventDispatcher interface {
	VideoAdded(ctx context.Context, teamID uint, video VideoInfo, fromTeamID *uint)
	VideoRemoved(ctx context.Context, teamID uint, video VideoInfo, toTeamID *uint)
	SubtitlesAdded(ctx context.Context, teamID uint, video VideoInfo, version SubtitleVersionInfo)
	SubtitlesPublished(ctx context.Context, teamID uint, video VideoInfo, language string)
	SubtitlesDeleted(ctx context.Context, teamID uint, video VideoInfo, language string)
	UserAdded(ctx context.Context, teamID uint, user UserInfo)
	UserRemoved(ctx context.Context, teamID uint, user UserInfo)
	UserInfoUpdated(ctx context.Context, teamID uint, user UserInfo)
}

// NopDispatcher drops every event, for services that do not fan out
type NopDispatcher struct{}

// VideoAdded implements EventDispatcher
func (NopDispatcher) VideoAdded(context.Context, uint, VideoInfo, *uint) {}

// VideoRemoved implements EventDispatcher
func (NopDispatcher) VideoRemoved(context.Context, uint, VideoInfo, *uint) {}

// SubtitlesAdded implements EventDispatcher
func (NopDispatcher) SubtitlesAdded(context.Context, uint, VideoInfo, SubtitleVersionInfo) {}

// SubtitlesPublished implements EventDispatcher
func (NopDispatcher) SubtitlesPublished(context.Context, uint, VideoInfo, string) {}

// SubtitlesDeleted implements EventDispatcher
func (NopDispatcher) SubtitlesDeleted(context.Context, uint, VideoInfo, string) {}

// UserAdded implements EventDispatcher
func (NopDispatcher) UserAdded(context.Context, uint, UserInfo) {}

// UserRemoved implements EventDispatcher
func (NopDispatcher) UserRemoved(context.Context, uint, UserInfo) {}

// UserInfoUpdated implements EventDispatcher
func (NopDispatcher) UserInfoUpdated(context.Context, uint, UserInfo) {}
