package domain

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrVersionNotFound is returned when no subtitle version matches
var ErrVersionNotFound = errors.New("subtitle version not found")

// ErrLanguageNotFound is returned when a video has no versions in a language
var ErrLanguageNotFound = errors.New("subtitle language not found")

// SubtitleVersion 單一語言的一個字幕版本。內容本體放在物件儲存,
// 這裡只留 metadata 跟 object key。
type SubtitleVersion struct {
	ID          uint   `gorm:"primaryKey"`
	VideoID     uint   `gorm:"index:idx_video_lang_version,unique;not null"`
	Language    string `gorm:"index:idx_video_lang_version,unique;size:16;not null"`
	Version     int    `gorm:"index:idx_video_lang_version,unique;not null"`
	ObjectKey   string `gorm:"size:256;not null"`
	IsPublished bool   `gorm:"default:false"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// BuildObjectKey 物件儲存的 key,對每個版本唯一
func BuildObjectKey(videoUID, language string, version int) string {
	return fmt.Sprintf("subtitles/%s/%s/v%d.srt", videoUID, language, version)
}
