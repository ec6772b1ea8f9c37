package app

import (
	"context"

	notifdomain "subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/video/domain"
	"subtitle_platform_service/internal/video/repository"
	"subtitle_platform_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reindexer triggers a search-index refresh after a video mutation
type Reindexer interface {
	ReindexVideo(ctx context.Context, videoID uint)
}

// VideoUseCase 這裡封裝了對外提供的應用服務
type VideoUseCase interface {
	Create(ctx context.Context, req domain.CreateVideoReq) (*domain.Video, error)
	Get(ctx context.Context, videoID string) (*domain.Video, error)
	GetByID(ctx context.Context, id uint) (*domain.Video, error)
	MoveToTeam(ctx context.Context, videoID string, teamID uint) error
	RemoveFromTeam(ctx context.Context, videoID string) error
	Search(ctx context.Context, keyword string) ([]domain.SearchVideoRes, error)
}

type videoUseCase struct {
	videoRepo  repository.VideoRepo
	dispatcher notifdomain.EventDispatcher
	reindexer  Reindexer
}

// NewVideoUseCase 建立一個新的 VideoUseCase
func NewVideoUseCase(videoRepo repository.VideoRepo,
	dispatcher notifdomain.EventDispatcher,
	reindexer Reindexer,
) VideoUseCase {
	return &videoUseCase{
		videoRepo:  videoRepo,
		dispatcher: dispatcher,
		reindexer:  reindexer,
	}
}

func eventInfo(video *domain.Video) notifdomain.VideoInfo {
	return notifdomain.VideoInfo{
		VideoID:  video.VideoID,
		Title:    video.Title,
		Language: video.Language,
	}
}

func (v *videoUseCase) Create(ctx context.Context, req domain.CreateVideoReq) (*domain.Video, error) {
	video := &domain.Video{
		VideoID:     uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		Duration:    req.Duration,
		TeamID:      req.TeamID,
		IsPublic:    true,
	}

	if err := v.videoRepo.Create(video); err != nil {
		return nil, err
	}

	logger.Log.Info("video created",
		zap.String("video_id", video.VideoID), zap.String("title", video.Title))

	if video.TeamID != nil {
		v.dispatcher.VideoAdded(ctx, *video.TeamID, eventInfo(video), nil)
	}
	v.reindexer.ReindexVideo(ctx, video.ID)
	return video, nil
}

func (v *videoUseCase) Get(ctx context.Context, videoID string) (*domain.Video, error) {
	return v.videoRepo.GetByVideoID(videoID)
}

func (v *videoUseCase) GetByID(ctx context.Context, id uint) (*domain.Video, error) {
	return v.videoRepo.GetByID(id)
}

// MoveToTeam 影片換 team：舊 team 收到 video-removed(帶新 team)，
// 新 team 收到 video-added(帶舊 team)
func (v *videoUseCase) MoveToTeam(ctx context.Context, videoID string, teamID uint) error {
	video, err := v.videoRepo.GetByVideoID(videoID)
	if err != nil {
		return err
	}

	oldTeamID := video.TeamID
	if oldTeamID != nil && *oldTeamID == teamID {
		return nil
	}

	if err := v.videoRepo.SetTeam(video.ID, &teamID); err != nil {
		return err
	}

	info := eventInfo(video)
	if oldTeamID != nil {
		v.dispatcher.VideoRemoved(ctx, *oldTeamID, info, &teamID)
	}
	v.dispatcher.VideoAdded(ctx, teamID, info, oldTeamID)
	v.reindexer.ReindexVideo(ctx, video.ID)
	return nil
}

func (v *videoUseCase) RemoveFromTeam(ctx context.Context, videoID string) error {
	video, err := v.videoRepo.GetByVideoID(videoID)
	if err != nil {
		return err
	}
	if video.TeamID == nil {
		return nil
	}

	oldTeamID := *video.TeamID
	if err := v.videoRepo.SetTeam(video.ID, nil); err != nil {
		return err
	}

	v.dispatcher.VideoRemoved(ctx, oldTeamID, eventInfo(video), nil)
	v.reindexer.ReindexVideo(ctx, video.ID)
	return nil
}

func (v *videoUseCase) Search(ctx context.Context, keyword string) ([]domain.SearchVideoRes, error) {
	videos, err := v.videoRepo.SearchVideos(keyword)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchVideoRes, 0, len(videos))
	for _, video := range videos {
		results = append(results, domain.SearchVideoRes{
			VideoID:  video.VideoID,
			Title:    video.Title,
			Language: video.Language,
		})
	}
	return results, nil
}
