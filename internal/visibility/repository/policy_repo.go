package repository

import (
	"errors"

	"subtitle_platform_service/internal/video/domain"
	visdomain "subtitle_platform_service/internal/visibility/domain"

	"gorm.io/gorm"
)

// PolicyRepo persistence for visibility policies. Create and Delete touch the
// video's denormalized public flag in the same transaction so concurrent
// readers observe policy and flag together or not at all.
type PolicyRepo interface {
	AutoMigrate() error
	GetByVideoID(videoID uint) (*visdomain.VisibilityPolicy, error)
	CreateForVideo(policy *visdomain.VisibilityPolicy) error
	DeleteForVideo(videoID uint) error
}

type policyRepo struct {
	db *gorm.DB
}

// NewPolicyRepo create a PolicyRepo
func NewPolicyRepo(db *gorm.DB) PolicyRepo {
	return &policyRepo{db: db}
}

func (r *policyRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&visdomain.VisibilityPolicy{})
}

func (r *policyRepo) GetByVideoID(videoID uint) (*visdomain.VisibilityPolicy, error) {
	var p visdomain.VisibilityPolicy
	if err := r.db.Where("video_id = ?", videoID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visdomain.ErrPolicyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateForVideo insert the policy row and update videos.is_public in one
// transaction. The unique index on video_id is the arbiter under racing
// creates, translated to ErrPolicyExists.
func (r *policyRepo) CreateForVideo(policy *visdomain.VisibilityPolicy) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(policy).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return visdomain.ErrPolicyExists
			}
			return err
		}

		return tx.Model(&domain.Video{}).Where("id = ?", policy.VideoID).
			Update("is_public", policy.MakesVideoPublic()).Error
	})
}

// DeleteForVideo remove the policy and restore the no-policy public default
func (r *policyRepo) DeleteForVideo(videoID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("video_id = ?", videoID).Delete(&visdomain.VisibilityPolicy{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return visdomain.ErrPolicyNotFound
		}

		return tx.Model(&domain.Video{}).Where("id = ?", videoID).
			Update("is_public", true).Error
	})
}
