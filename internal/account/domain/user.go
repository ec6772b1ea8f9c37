package domain

import (
	"errors"
	"time"

	"subtitle_platform_service/pkg/encrypt"
)

// UserStatus 用來表示使用者狀態
type UserStatus int

// 状态: 0=offline, 1=online, 2=ban ,3=delete
const (
	// UserStatusOffLine 使用者離線
	UserStatusOffLine UserStatus = iota
	// UserStatusOnLine 使用者在線
	UserStatusOnLine
	// UserStatusBan 使用者被封鎖
	UserStatusBan
	// UserStatusDelete 使用者已刪除
	UserStatusDelete
)

// ErrUserNotFound is returned when no account matches the query
var ErrUserNotFound = errors.New("no user found with given criteria")

// ErrEmailExists is returned on a duplicate registration
var ErrEmailExists = errors.New("email already exists")

// User 平台帳號
type User struct {
	ID          int64
	UserID      string
	Email       string
	Password    string
	DisplayName string
	IsSuperuser bool
	Status      UserStatus
}

// UserSession 用來表示使用者的 Session
type UserSession struct {
	Token        string    `json:"Token"`
	UserID       string    `json:"UserID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch 密碼驗證
func (u *User) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(u.Password, inputPwd)
}

// IsExpired 檢查 Session 是否已過期
func (s *UserSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// UserQuery join conditions are used to query users
type UserQuery struct {
	ID     *int64  `db:"id"`
	UserID *string `db:"user_id"`
	Email  *string `db:"email"`
}
