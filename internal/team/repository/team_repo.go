package repository

import (
	"errors"

	"subtitle_platform_service/internal/team/domain"

	"gorm.io/gorm"
)

// TeamRepo definition team and membership persistence
type TeamRepo interface {
	AutoMigrate() error
	CreateTeam(team *domain.Team) error
	GetTeam(id uint) (*domain.Team, error)
	GetTeamBySlug(slug string) (*domain.Team, error)

	AddMember(member *domain.TeamMember) error
	RemoveMember(teamID uint, userID string) error
	UpdateRole(teamID uint, userID string, role domain.Role) error
	GetMember(teamID uint, userID string) (*domain.TeamMember, error)
	ListMembers(teamID uint) ([]domain.TeamMember, error)
	CountByRole(teamID uint, role domain.Role) (int64, error)
	TeamIDsForUser(userID string) ([]uint, error)
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo create TeamRepo
func NewTeamRepo(db *gorm.DB) TeamRepo {
	return &teamRepo{db: db}
}

func (r *teamRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Team{}, &domain.TeamMember{})
}

func (r *teamRepo) CreateTeam(team *domain.Team) error {
	return r.db.Create(team).Error
}

func (r *teamRepo) GetTeam(id uint) (*domain.Team, error) {
	var t domain.Team
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepo) GetTeamBySlug(slug string) (*domain.Team, error) {
	var t domain.Team
	if err := r.db.Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepo) AddMember(member *domain.TeamMember) error {
	err := r.db.Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyMember
	}
	return err
}

func (r *teamRepo) RemoveMember(teamID uint, userID string) error {
	result := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&domain.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotMember
	}
	return nil
}

func (r *teamRepo) UpdateRole(teamID uint, userID string, role domain.Role) error {
	result := r.db.Model(&domain.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", string(role))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotMember
	}
	return nil
}

func (r *teamRepo) GetMember(teamID uint, userID string) (*domain.TeamMember, error) {
	var m domain.TeamMember
	err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *teamRepo) ListMembers(teamID uint) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	if err := r.db.Where("team_id = ?", teamID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *teamRepo) CountByRole(teamID uint, role domain.Role) (int64, error) {
	var count int64
	err := r.db.Model(&domain.TeamMember{}).
		Where("team_id = ? AND role = ?", teamID, string(role)).Count(&count).Error
	return count, err
}

func (r *teamRepo) TeamIDsForUser(userID string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&domain.TeamMember{}).Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error
	return ids, err
}
