package app

import (
	"context"

	notifdomain "subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/internal/team/domain"
	"subtitle_platform_service/internal/team/repository"
	"subtitle_platform_service/pkg/logger"

	"go.uber.org/zap"
)

// UserResolver 由 account 模組提供，用來補齊事件中的 user 欄位
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (notifdomain.UserInfo, error)
}

// TeamUseCase 這裡封裝了對外提供的應用服務
type TeamUseCase interface {
	CreateTeam(ctx context.Context, name, slug, creatorUserID string) (*domain.Team, error)
	GetTeam(ctx context.Context, id uint) (*domain.Team, error)
	AddMember(ctx context.Context, teamID uint, userID string, role domain.Role) error
	RemoveMember(ctx context.Context, teamID uint, userID string) error
	ChangeRole(ctx context.Context, teamID uint, userID string, role domain.Role) error
	ListMembers(ctx context.Context, teamID uint) ([]domain.TeamMember, error)
	IsMember(ctx context.Context, teamID uint, userID string) (bool, error)
}

type teamUseCase struct {
	teamRepo   repository.TeamRepo
	dispatcher notifdomain.EventDispatcher
	users      UserResolver
}

// NewTeamUseCase 建立一個新的 TeamUseCase
func NewTeamUseCase(teamRepo repository.TeamRepo,
	dispatcher notifdomain.EventDispatcher,
	users UserResolver,
) TeamUseCase {
	return &teamUseCase{
		teamRepo:   teamRepo,
		dispatcher: dispatcher,
		users:      users,
	}
}

func (t *teamUseCase) userInfo(ctx context.Context, userID string) notifdomain.UserInfo {
	info, err := t.users.ResolveUser(ctx, userID)
	if err != nil {
		logger.Log.Warn("resolve user for event failed",
			zap.String("user_id", userID), zap.Error(err))
		return notifdomain.UserInfo{UserID: userID}
	}
	return info
}

// CreateTeam 建立 team，建立者自動成為 owner
func (t *teamUseCase) CreateTeam(ctx context.Context, name, slug, creatorUserID string) (*domain.Team, error) {
	team := &domain.Team{Name: name, Slug: slug}
	if err := t.teamRepo.CreateTeam(team); err != nil {
		return nil, err
	}

	if err := t.teamRepo.AddMember(&domain.TeamMember{
		TeamID: team.ID,
		UserID: creatorUserID,
		Role:   string(domain.RoleOwner),
	}); err != nil {
		return nil, err
	}

	return team, nil
}

func (t *teamUseCase) GetTeam(ctx context.Context, id uint) (*domain.Team, error) {
	return t.teamRepo.GetTeam(id)
}

func (t *teamUseCase) AddMember(ctx context.Context, teamID uint, userID string, role domain.Role) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}

	if err := t.teamRepo.AddMember(&domain.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   string(role),
	}); err != nil {
		return err
	}

	t.dispatcher.UserAdded(ctx, teamID, t.userInfo(ctx, userID))
	return nil
}

func (t *teamUseCase) RemoveMember(ctx context.Context, teamID uint, userID string) error {
	member, err := t.teamRepo.GetMember(teamID, userID)
	if err != nil {
		return err
	}

	// 不允許移除最後一位 owner
	if domain.Role(member.Role) == domain.RoleOwner {
		owners, err := t.teamRepo.CountByRole(teamID, domain.RoleOwner)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return domain.ErrLastOwner
		}
	}

	if err := t.teamRepo.RemoveMember(teamID, userID); err != nil {
		return err
	}

	t.dispatcher.UserRemoved(ctx, teamID, t.userInfo(ctx, userID))
	return nil
}

func (t *teamUseCase) ChangeRole(ctx context.Context, teamID uint, userID string, role domain.Role) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}

	member, err := t.teamRepo.GetMember(teamID, userID)
	if err != nil {
		return err
	}

	// owner 降級前確認還有其他 owner
	if domain.Role(member.Role) == domain.RoleOwner && role != domain.RoleOwner {
		owners, err := t.teamRepo.CountByRole(teamID, domain.RoleOwner)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return domain.ErrLastOwner
		}
	}

	return t.teamRepo.UpdateRole(teamID, userID, role)
}

func (t *teamUseCase) ListMembers(ctx context.Context, teamID uint) ([]domain.TeamMember, error) {
	return t.teamRepo.ListMembers(teamID)
}

// IsMember 供 visibility engine 查詢
func (t *teamUseCase) IsMember(ctx context.Context, teamID uint, userID string) (bool, error) {
	_, err := t.teamRepo.GetMember(teamID, userID)
	if err == domain.ErrNotMember {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
