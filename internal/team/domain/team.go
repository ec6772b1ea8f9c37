package domain

import (
	"errors"
	"time"
)

// Role 用來表示 team member 的角色
type Role string

const (
	// RoleOwner full control including deleting the team
	RoleOwner Role = "owner"
	// RoleAdmin manages members and settings
	RoleAdmin Role = "admin"
	// RoleManager manages videos and subtitle work
	RoleManager Role = "manager"
	// RoleContributor edits subtitles
	RoleContributor Role = "contributor"
)

var (
	// ErrNotMember the user does not belong to the team
	ErrNotMember = errors.New("user is not a member of the team")
	// ErrAlreadyMember the user already belongs to the team
	ErrAlreadyMember = errors.New("user is already a member of the team")
	// ErrLastOwner the last owner cannot leave or be removed
	ErrLastOwner = errors.New("cannot remove the last owner of a team")
	// ErrInvalidRole unknown role string
	ErrInvalidRole = errors.New("invalid team role")
)

// ValidRole check a role string
func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleContributor:
		return true
	}
	return false
}

// Team 協作團隊
type Team struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Slug      string `gorm:"uniqueIndex"`
	CreatedAt time.Time
}

// TeamMember 一個 user 在一個 team 只有一筆
type TeamMember struct {
	ID        uint   `gorm:"primaryKey"`
	TeamID    uint   `gorm:"uniqueIndex:idx_team_user"`
	UserID    string `gorm:"uniqueIndex:idx_team_user"`
	Role      string
	CreatedAt time.Time
}
