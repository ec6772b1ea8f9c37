package repository

import (
	"errors"

	"subtitle_platform_service/internal/subtitles/domain"

	"gorm.io/gorm"
)

// SubtitleRepo persistence for subtitle version metadata
type SubtitleRepo interface {
	AutoMigrate() error
	Create(version *domain.SubtitleVersion) error
	NextVersion(videoID uint, language string) (int, error)
	GetVersion(videoID uint, language string, version int) (*domain.SubtitleVersion, error)
	GetLatest(videoID uint, language string) (*domain.SubtitleVersion, error)
	MarkPublished(videoID uint, language string, version int) error
	ListByLanguage(videoID uint, language string) ([]domain.SubtitleVersion, error)
	ListLanguages(videoID uint) ([]string, error)
	DeleteLanguage(videoID uint, language string) error
}

type subtitleRepo struct {
	db *gorm.DB
}

// NewSubtitleRepo create a SubtitleRepo
func NewSubtitleRepo(db *gorm.DB) SubtitleRepo {
	return &subtitleRepo{db: db}
}

func (r *subtitleRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.SubtitleVersion{})
}

func (r *subtitleRepo) Create(version *domain.SubtitleVersion) error {
	return r.db.Create(version).Error
}

// NextVersion 版本號單調遞增,刪掉的版本也算進去
func (r *subtitleRepo) NextVersion(videoID uint, language string) (int, error) {
	var max int
	err := r.db.Model(&domain.SubtitleVersion{}).Unscoped().
		Where("video_id = ? AND language = ?", videoID, language).
		Select("COALESCE(MAX(version), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *subtitleRepo) GetVersion(videoID uint, language string, version int) (*domain.SubtitleVersion, error) {
	var v domain.SubtitleVersion
	err := r.db.Where("video_id = ? AND language = ? AND version = ?", videoID, language, version).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *subtitleRepo) GetLatest(videoID uint, language string) (*domain.SubtitleVersion, error) {
	var v domain.SubtitleVersion
	err := r.db.Where("video_id = ? AND language = ?", videoID, language).
		Order("version DESC").First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *subtitleRepo) MarkPublished(videoID uint, language string, version int) error {
	res := r.db.Model(&domain.SubtitleVersion{}).
		Where("video_id = ? AND language = ? AND version = ?", videoID, language, version).
		Update("is_published", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

func (r *subtitleRepo) ListByLanguage(videoID uint, language string) ([]domain.SubtitleVersion, error) {
	var versions []domain.SubtitleVersion
	err := r.db.Where("video_id = ? AND language = ?", videoID, language).
		Order("version ASC").Find(&versions).Error
	return versions, err
}

func (r *subtitleRepo) ListLanguages(videoID uint) ([]string, error) {
	var languages []string
	err := r.db.Model(&domain.SubtitleVersion{}).
		Where("video_id = ?", videoID).
		Distinct().Pluck("language", &languages).Error
	return languages, err
}

func (r *subtitleRepo) DeleteLanguage(videoID uint, language string) error {
	res := r.db.Where("video_id = ? AND language = ?", videoID, language).
		Delete(&domain.SubtitleVersion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrLanguageNotFound
	}
	return nil
}
