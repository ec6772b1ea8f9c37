package domain

import "time"

// Video 定義影片模型
type Video struct {
	ID          uint   `gorm:"primaryKey"`
	VideoID     string `gorm:"uniqueIndex"` // 對外公開的識別碼
	Title       string
	Description string
	Language    string // primary audio language code
	Duration    uint   // seconds
	TeamID      *uint  `gorm:"index"` // nil 表示不屬於任何 team

	// IsPublic denormalized from the visibility policy: public iff the video
	// has no policy or the policy's site visibility is public
	IsPublic bool `gorm:"default:true"`

	CreatedAt time.Time
}

// CreateVideoReq usecase create video request
type CreateVideoReq struct {
	Title       string
	Description string
	Language    string
	Duration    uint
	TeamID      *uint
}

// SearchVideoRes usecase search response entry
type SearchVideoRes struct {
	VideoID  string
	Title    string
	Language string
}
