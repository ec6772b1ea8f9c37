package repository

import (
	"subtitle_platform_service/internal/video/domain"

	"gorm.io/gorm"
)

// VideoRepo definition get video info
type VideoRepo interface {
	AutoMigrate() error
	Create(video *domain.Video) error
	GetByID(id uint) (*domain.Video, error)
	GetByVideoID(videoID string) (*domain.Video, error)
	Update(video *domain.Video) error
	SetTeam(id uint, teamID *uint) error
	SearchVideos(keyword string) ([]domain.Video, error)
}

type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo create VideoRepo
func NewVideoRepo(db *gorm.DB) VideoRepo {
	return &videoRepo{db: db}
}

func (r *videoRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Video{})
}

func (r *videoRepo) Create(video *domain.Video) error {
	return r.db.Create(video).Error
}

// GetByID get Video by primary key
func (r *videoRepo) GetByID(id uint) (*domain.Video, error) {
	var v domain.Video
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByVideoID get Video by the public identifier
func (r *videoRepo) GetByVideoID(videoID string) (*domain.Video, error) {
	var v domain.Video
	if err := r.db.Where("video_id = ?", videoID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *videoRepo) Update(video *domain.Video) error {
	return r.db.Save(video).Error
}

// SetTeam move the video between teams, nil detaches it
func (r *videoRepo) SetTeam(id uint, teamID *uint) error {
	return r.db.Model(&domain.Video{}).Where("id = ?", id).Update("team_id", teamID).Error
}

// SearchVideos 利用 PostgreSQL 的 ILIKE 實作模糊搜尋，僅回傳公開影片
func (r *videoRepo) SearchVideos(keyword string) ([]domain.Video, error) {
	var videos []domain.Video
	like := "%" + keyword + "%"
	if err := r.db.Where("(title ILIKE ? OR description ILIKE ?) AND is_public = ?", like, like, true).Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}
