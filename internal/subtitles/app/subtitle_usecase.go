package app

import (
	"context"

	notifdomain "subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/subtitles/domain"
	"subtitle_platform_service/internal/subtitles/repository"
	videodomain "subtitle_platform_service/internal/video/domain"
	videorepo "subtitle_platform_service/internal/video/repository"
	errprocess "subtitle_platform_service/pkg/err"
	"subtitle_platform_service/pkg/logger"

	"go.uber.org/zap"
)

// Storage object store for subtitle content
type Storage interface {
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	DownloadBytes(ctx context.Context, objectName string) ([]byte, error)
	RemoveObject(ctx context.Context, objectName string) error
}

// Reindexer triggers a search-index refresh after a subtitle mutation
type Reindexer interface {
	ReindexVideo(ctx context.Context, videoID uint)
}

// SubtitleUseCase 這裡封裝了對外提供的應用服務
type SubtitleUseCase interface {
	AddVersion(ctx context.Context, videoUID, language string, content []byte) (*domain.SubtitleVersion, error)
	Publish(ctx context.Context, videoUID, language string, version int) error
	DeleteLanguage(ctx context.Context, videoUID, language string) error
	GetContent(ctx context.Context, videoUID, language string) ([]byte, error)
	ListLanguages(ctx context.Context, videoUID string) ([]string, error)
}

type subtitleUseCase struct {
	subtitleRepo repository.SubtitleRepo
	videoRepo    videorepo.VideoRepo
	storage      Storage
	dispatcher   notifdomain.EventDispatcher
	reindexer    Reindexer
}

// NewSubtitleUseCase 建立一個新的 SubtitleUseCase
func NewSubtitleUseCase(subtitleRepo repository.SubtitleRepo,
	videoRepo videorepo.VideoRepo,
	storage Storage,
	dispatcher notifdomain.EventDispatcher,
	reindexer Reindexer,
) SubtitleUseCase {
	return &subtitleUseCase{
		subtitleRepo: subtitleRepo,
		videoRepo:    videoRepo,
		storage:      storage,
		dispatcher:   dispatcher,
		reindexer:    reindexer,
	}
}

func videoInfo(video *videodomain.Video) notifdomain.VideoInfo {
	return notifdomain.VideoInfo{
		VideoID:  video.VideoID,
		Title:    video.Title,
		Language: video.Language,
	}
}

// AddVersion 上傳一個新版本。版本號在同一 video+language 底下遞增。
func (s *subtitleUseCase) AddVersion(ctx context.Context, videoUID, language string, content []byte) (*domain.SubtitleVersion, error) {
	video, err := s.videoRepo.GetByVideoID(videoUID)
	if err != nil {
		return nil, err
	}

	next, err := s.subtitleRepo.NextVersion(video.ID, language)
	if err != nil {
		return nil, err
	}

	objectKey := domain.BuildObjectKey(videoUID, language, next)
	if err := s.storage.UploadBytes(ctx, objectKey, content, "application/x-subrip"); err != nil {
		return nil, errprocess.Setf("upload subtitle object [%s] failed: %v", objectKey, err)
	}

	version := &domain.SubtitleVersion{
		VideoID:   video.ID,
		Language:  language,
		Version:   next,
		ObjectKey: objectKey,
	}
	if err := s.subtitleRepo.Create(version); err != nil {
		// 資料列沒寫成功就把物件清掉
		if rmErr := s.storage.RemoveObject(ctx, objectKey); rmErr != nil {
			logger.Log.Warn("orphan subtitle object left behind",
				zap.String("object", objectKey), zap.String("err", rmErr.Error()))
		}
		return nil, err
	}

	if video.TeamID != nil {
		s.dispatcher.SubtitlesAdded(ctx, *video.TeamID, videoInfo(video),
			notifdomain.SubtitleVersionInfo{Language: language, Version: next})
	}
	s.reindexer.ReindexVideo(ctx, video.ID)
	return version, nil
}

// Publish 標記版本已發佈
func (s *subtitleUseCase) Publish(ctx context.Context, videoUID, language string, version int) error {
	video, err := s.videoRepo.GetByVideoID(videoUID)
	if err != nil {
		return err
	}

	if err := s.subtitleRepo.MarkPublished(video.ID, language, version); err != nil {
		return err
	}

	if video.TeamID != nil {
		s.dispatcher.SubtitlesPublished(ctx, *video.TeamID, videoInfo(video), language)
	}
	s.reindexer.ReindexVideo(ctx, video.ID)
	return nil
}

// DeleteLanguage 移除一個語言的所有版本,物件儲存的內容一併清掉
func (s *subtitleUseCase) DeleteLanguage(ctx context.Context, videoUID, language string) error {
	video, err := s.videoRepo.GetByVideoID(videoUID)
	if err != nil {
		return err
	}

	versions, err := s.subtitleRepo.ListByLanguage(video.ID, language)
	if err != nil {
		return err
	}

	if err := s.subtitleRepo.DeleteLanguage(video.ID, language); err != nil {
		return err
	}

	for _, v := range versions {
		if err := s.storage.RemoveObject(ctx, v.ObjectKey); err != nil {
			logger.Log.Warn("remove subtitle object failed",
				zap.String("object", v.ObjectKey), zap.String("err", err.Error()))
		}
	}

	if video.TeamID != nil {
		s.dispatcher.SubtitlesDeleted(ctx, *video.TeamID, videoInfo(video), language)
	}
	s.reindexer.ReindexVideo(ctx, video.ID)
	return nil
}

// GetContent 取最新版本的字幕內容
func (s *subtitleUseCase) GetContent(ctx context.Context, videoUID, language string) ([]byte, error) {
	video, err := s.videoRepo.GetByVideoID(videoUID)
	if err != nil {
		return nil, err
	}

	latest, err := s.subtitleRepo.GetLatest(video.ID, language)
	if err != nil {
		return nil, err
	}

	content, err := s.storage.DownloadBytes(ctx, latest.ObjectKey)
	if err != nil {
		return nil, errprocess.Setf("download subtitle object [%s] failed: %v", latest.ObjectKey, err)
	}
	return content, nil
}

func (s *subtitleUseCase) ListLanguages(ctx context.Context, videoUID string) ([]string, error) {
	video, err := s.videoRepo.GetByVideoID(videoUID)
	if err != nil {
		return nil, err
	}
	return s.subtitleRepo.ListLanguages(video.ID)
}
