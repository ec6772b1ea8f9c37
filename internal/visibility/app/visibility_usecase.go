package app

import (
	"context"

	"subtitle_platform_service/internal/visibility/domain"
	"subtitle_platform_service/internal/visibility/repository"
	"subtitle_platform_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MembershipChecker 由 team 模組提供
type MembershipChecker interface {
	IsMember(ctx context.Context, teamID uint, userID string) (bool, error)
}

// Reindexer triggers a search-index refresh after a visibility change
type Reindexer interface {
	ReindexVideo(ctx context.Context, videoID uint)
}

// CreatePolicyReq usecase create policy request
type CreatePolicyReq struct {
	VideoID          uint
	SiteVisibility   domain.SiteVisibility
	WidgetVisibility domain.WidgetVisibility
	Owner            domain.Owner
	EmbedDomains     []string
}

// VisibilityUseCase the policy engine. Reads are pure; Create and Delete are
// the only mutation paths and both go through a single repo transaction.
type VisibilityUseCase interface {
	CreateForVideo(ctx context.Context, actor domain.Actor, req CreatePolicyReq) (*domain.VisibilityPolicy, error)
	CanCreateForVideo(ctx context.Context, videoID uint, actor domain.Actor, owner domain.Owner) (bool, error)
	VideoHasOwner(ctx context.Context, videoID uint) (bool, error)
	UserCanSee(ctx context.Context, actor domain.Actor, videoID uint, suppliedSecret string) (bool, error)
	CanShowWidget(ctx context.Context, videoID uint, referringDomain string) (bool, error)
	DeleteForVideo(ctx context.Context, actor domain.Actor, videoID uint) error
	GetPolicyForActor(ctx context.Context, actor domain.Actor, videoID uint) (*domain.VisibilityPolicy, error)
}

type visibilityUseCase struct {
	policyRepo repository.PolicyRepo
	membership MembershipChecker
	reindexer  Reindexer
}

// NewVisibilityUseCase 建立 policy engine
func NewVisibilityUseCase(policyRepo repository.PolicyRepo, membership MembershipChecker, reindexer Reindexer) VisibilityUseCase {
	return &visibilityUseCase{
		policyRepo: policyRepo,
		membership: membership,
		reindexer:  reindexer,
	}
}

// actorOwns the ownership condition shared by the private visibilities
func (v *visibilityUseCase) actorOwns(ctx context.Context, actor domain.Actor, policy *domain.VisibilityPolicy) (bool, error) {
	if actor.Anonymous() {
		return false, nil
	}
	owner := policy.Owner()
	switch owner.Kind {
	case domain.OwnerUser:
		return owner.UserID == actor.UserID, nil
	case domain.OwnerTeam:
		return v.membership.IsMember(ctx, owner.TeamID, actor.UserID)
	}
	return false, nil
}

func (v *visibilityUseCase) CreateForVideo(ctx context.Context, actor domain.Actor, req CreatePolicyReq) (*domain.VisibilityPolicy, error) {
	if !req.Owner.Valid() {
		return nil, domain.ErrInvalidOwner
	}
	if !domain.ValidSiteVisibility(req.SiteVisibility) {
		return nil, domain.ErrInvalidVisibility
	}
	if req.WidgetVisibility != "" && !domain.ValidWidgetVisibility(req.WidgetVisibility) {
		return nil, domain.ErrInvalidVisibility
	}

	allowed, err := v.CanCreateForVideo(ctx, req.VideoID, actor, req.Owner)
	if err != nil {
		return nil, err
	}
	if !allowed {
		// 區分 conflict 與 ownership 不符
		if _, getErr := v.policyRepo.GetByVideoID(req.VideoID); getErr == domain.ErrPolicyNotFound {
			return nil, domain.ErrPermissionDenied
		}
		return nil, domain.ErrPolicyExists
	}

	widget := req.WidgetVisibility
	if widget == "" {
		widget = domain.WidgetPublic
	}

	policy := &domain.VisibilityPolicy{
		VideoID:             req.VideoID,
		OwnerKind:           string(req.Owner.Kind),
		OwnerUserID:         req.Owner.UserID,
		OwnerTeamID:         req.Owner.TeamID,
		SiteVisibility:      string(req.SiteVisibility),
		WidgetVisibility:    string(widget),
		SecretKey:           uuid.New().String(),
		EmbedAllowedDomains: domain.NormalizeDomains(req.EmbedDomains),
	}

	if err := v.policyRepo.CreateForVideo(policy); err != nil {
		return nil, err
	}

	logger.Log.Info("visibility policy created",
		zap.Uint("video_id", req.VideoID),
		zap.String("owner_kind", policy.OwnerKind),
		zap.String("site_visibility", policy.SiteVisibility))

	v.reindexer.ReindexVideo(ctx, req.VideoID)
	return policy, nil
}

// CanCreateForVideo false once any policy exists, and the prospective owner
// must be the actor's own identity: a user owner must be the actor, a team
// owner requires the actor to be a member of that team.
func (v *visibilityUseCase) CanCreateForVideo(ctx context.Context, videoID uint, actor domain.Actor, owner domain.Owner) (bool, error) {
	if _, err := v.policyRepo.GetByVideoID(videoID); err == nil {
		return false, nil
	} else if err != domain.ErrPolicyNotFound {
		return false, err
	}

	if actor.IsSuperuser {
		return true, nil
	}
	if actor.Anonymous() {
		return false, nil
	}

	switch owner.Kind {
	case domain.OwnerUser:
		return owner.UserID == actor.UserID, nil
	case domain.OwnerTeam:
		return v.membership.IsMember(ctx, owner.TeamID, actor.UserID)
	}
	return false, nil
}

func (v *visibilityUseCase) VideoHasOwner(ctx context.Context, videoID uint) (bool, error) {
	if _, err := v.policyRepo.GetByVideoID(videoID); err != nil {
		if err == domain.ErrPolicyNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UserCanSee the site-access decision table. No policy means public.
func (v *visibilityUseCase) UserCanSee(ctx context.Context, actor domain.Actor, videoID uint, suppliedSecret string) (bool, error) {
	policy, err := v.policyRepo.GetByVideoID(videoID)
	if err != nil {
		if err == domain.ErrPolicyNotFound {
			return true, nil
		}
		return false, err
	}

	if actor.IsSuperuser {
		return true, nil
	}

	switch domain.SiteVisibility(policy.SiteVisibility) {
	case domain.SitePublic:
		return true, nil
	case domain.SitePrivateOwner:
		return v.actorOwns(ctx, actor, policy)
	case domain.SitePrivateWithKey:
		if policy.SecretMatches(suppliedSecret) {
			return true, nil
		}
		return v.actorOwns(ctx, actor, policy)
	}
	return false, nil
}

// CanShowWidget 只看 widget visibility，與 UserCanSee 無關
func (v *visibilityUseCase) CanShowWidget(ctx context.Context, videoID uint, referringDomain string) (bool, error) {
	policy, err := v.policyRepo.GetByVideoID(videoID)
	if err != nil {
		if err == domain.ErrPolicyNotFound {
			return true, nil
		}
		return false, err
	}

	switch domain.WidgetVisibility(policy.WidgetVisibility) {
	case domain.WidgetPublic:
		return true, nil
	case domain.WidgetHidden:
		return false, nil
	case domain.WidgetWhitelisted:
		return policy.IsDomainAllowed(referringDomain), nil
	}
	return false, nil
}

// DeleteForVideo the only supported downgrade path: drop the policy, restore
// the public default and reindex.
func (v *visibilityUseCase) DeleteForVideo(ctx context.Context, actor domain.Actor, videoID uint) error {
	policy, err := v.policyRepo.GetByVideoID(videoID)
	if err != nil {
		return err
	}

	if !actor.IsSuperuser {
		owns, err := v.actorOwns(ctx, actor, policy)
		if err != nil {
			return err
		}
		if !owns {
			return domain.ErrPermissionDenied
		}
	}

	if err := v.policyRepo.DeleteForVideo(videoID); err != nil {
		return err
	}

	logger.Log.Info("visibility policy deleted", zap.Uint("video_id", videoID))
	v.reindexer.ReindexVideo(ctx, videoID)
	return nil
}

// GetPolicyForActor read the policy. The response carries the secret key, so
// the read is restricted to the owning actor (user owner, team member, or
// superuser); everyone else gets ErrPermissionDenied.
func (v *visibilityUseCase) GetPolicyForActor(ctx context.Context, actor domain.Actor, videoID uint) (*domain.VisibilityPolicy, error) {
	policy, err := v.policyRepo.GetByVideoID(videoID)
	if err != nil {
		return nil, err
	}

	if !actor.IsSuperuser {
		owns, err := v.actorOwns(ctx, actor, policy)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, domain.ErrPermissionDenied
		}
	}
	return policy, nil
}
