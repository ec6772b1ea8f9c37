package app

import (
	"context"
	"testing"

	"subtitle_platform_service/internal/visibility/domain"
	"subtitle_platform_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetNewNop()
}

type mockPolicyRepo struct {
	mock.Mock
}

func (m *mockPolicyRepo) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockPolicyRepo) GetByVideoID(videoID uint) (*domain.VisibilityPolicy, error) {
	args := m.Called(videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VisibilityPolicy), args.Error(1)
}

func (m *mockPolicyRepo) CreateForVideo(policy *domain.VisibilityPolicy) error {
	args := m.Called(policy)
	return args.Error(0)
}

func (m *mockPolicyRepo) DeleteForVideo(videoID uint) error {
	args := m.Called(videoID)
	return args.Error(0)
}

type mockMembership struct {
	mock.Mock
}

func (m *mockMembership) IsMember(ctx context.Context, teamID uint, userID string) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

type nopReindexer struct{ calls []uint }

func (n *nopReindexer) ReindexVideo(ctx context.Context, videoID uint) {
	n.calls = append(n.calls, videoID)
}

func userPolicy(videoID uint, site domain.SiteVisibility, ownerUserID string) *domain.VisibilityPolicy {
	return &domain.VisibilityPolicy{
		VideoID:          videoID,
		OwnerKind:        string(domain.OwnerUser),
		OwnerUserID:      ownerUserID,
		SiteVisibility:   string(site),
		WidgetVisibility: string(domain.WidgetPublic),
		SecretKey:        "secret-key-1",
	}
}

func teamPolicy(videoID uint, site domain.SiteVisibility, ownerTeamID uint) *domain.VisibilityPolicy {
	return &domain.VisibilityPolicy{
		VideoID:          videoID,
		OwnerKind:        string(domain.OwnerTeam),
		OwnerTeamID:      ownerTeamID,
		SiteVisibility:   string(site),
		WidgetVisibility: string(domain.WidgetPublic),
		SecretKey:        "secret-key-2",
	}
}

func TestUserCanSeeNoPolicyIsPublic(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(nil, domain.ErrPolicyNotFound)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	canSee, err := uc.UserCanSee(context.Background(), domain.Actor{}, 1, "")
	require.NoError(t, err)
	assert.True(t, canSee)
}

func TestUserCanSeeSuperuserAlways(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(userPolicy(1, domain.SitePrivateOwner, "owner"), nil)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	canSee, err := uc.UserCanSee(context.Background(), domain.Actor{UserID: "someone", IsSuperuser: true}, 1, "")
	require.NoError(t, err)
	assert.True(t, canSee)
}

func TestUserCanSeePrivateOwnerDecisions(t *testing.T) {
	cases := []struct {
		name   string
		actor  domain.Actor
		expect bool
	}{
		{"owner sees", domain.Actor{UserID: "owner"}, true},
		{"other user blocked", domain.Actor{UserID: "stranger"}, false},
		{"anonymous blocked", domain.Actor{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockPolicyRepo)
			repo.On("GetByVideoID", uint(1)).Return(userPolicy(1, domain.SitePrivateOwner, "owner"), nil)
			uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

			canSee, err := uc.UserCanSee(context.Background(), tc.actor, 1, "")
			require.NoError(t, err)
			assert.Equal(t, tc.expect, canSee)
		})
	}
}

func TestUserCanSeeTeamOwnedUsesMembership(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(teamPolicy(1, domain.SitePrivateOwner, 5), nil)

	membership := new(mockMembership)
	membership.On("IsMember", mock.Anything, uint(5), "inside").Return(true, nil)
	membership.On("IsMember", mock.Anything, uint(5), "outside").Return(false, nil)

	uc := NewVisibilityUseCase(repo, membership, &nopReindexer{})

	canSee, err := uc.UserCanSee(context.Background(), domain.Actor{UserID: "inside"}, 1, "")
	require.NoError(t, err)
	assert.True(t, canSee)

	canSee, err = uc.UserCanSee(context.Background(), domain.Actor{UserID: "outside"}, 1, "")
	require.NoError(t, err)
	assert.False(t, canSee)
}

func TestUserCanSeeSecretKeyBypass(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(userPolicy(1, domain.SitePrivateWithKey, "owner"), nil)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	// 正確金鑰讓匿名者通過
	canSee, err := uc.UserCanSee(context.Background(), domain.Actor{}, 1, "secret-key-1")
	require.NoError(t, err)
	assert.True(t, canSee)

	// 錯誤金鑰擋下,又不是 owner
	canSee, err = uc.UserCanSee(context.Background(), domain.Actor{UserID: "stranger"}, 1, "wrong")
	require.NoError(t, err)
	assert.False(t, canSee)

	// owner 不需要金鑰
	canSee, err = uc.UserCanSee(context.Background(), domain.Actor{UserID: "owner"}, 1, "")
	require.NoError(t, err)
	assert.True(t, canSee)
}

func TestCanShowWidgetIndependentOfSiteAccess(t *testing.T) {
	policy := userPolicy(1, domain.SitePrivateOwner, "owner")
	policy.WidgetVisibility = string(domain.WidgetPublic)

	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(policy, nil)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	// site access 是 private,widget 還是可以嵌
	allowed, err := uc.CanShowWidget(context.Background(), 1, "anything.example")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCanShowWidgetDecisions(t *testing.T) {
	cases := []struct {
		name   string
		widget domain.WidgetVisibility
		list   []string
		domain string
		expect bool
	}{
		{"hidden never", domain.WidgetHidden, nil, "example.com", false},
		{"whitelisted exact match", domain.WidgetWhitelisted, []string{"Example.COM"}, "example.com", true},
		{"whitelisted case insensitive query", domain.WidgetWhitelisted, []string{"example.com"}, "EXAMPLE.com", true},
		{"whitelisted subdomain no match", domain.WidgetWhitelisted, []string{"example.com"}, "sub.example.com", false},
		{"whitelisted miss", domain.WidgetWhitelisted, []string{"example.com"}, "other.org", false},
		{"whitelisted empty query", domain.WidgetWhitelisted, []string{"example.com"}, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := userPolicy(1, domain.SitePublic, "owner")
			policy.WidgetVisibility = string(tc.widget)
			policy.EmbedAllowedDomains = domain.NormalizeDomains(tc.list)

			repo := new(mockPolicyRepo)
			repo.On("GetByVideoID", uint(1)).Return(policy, nil)
			uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

			allowed, err := uc.CanShowWidget(context.Background(), 1, tc.domain)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, allowed)
		})
	}
}

func TestCreateForVideoConflict(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(userPolicy(1, domain.SitePublic, "owner"), nil)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	_, err := uc.CreateForVideo(context.Background(), domain.Actor{UserID: "owner"}, CreatePolicyReq{
		VideoID:        1,
		SiteVisibility: domain.SitePrivateOwner,
		Owner:          domain.Owner{Kind: domain.OwnerUser, UserID: "owner"},
	})
	assert.ErrorIs(t, err, domain.ErrPolicyExists)
}

func TestCreateForVideoPermissionDenied(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(nil, domain.ErrPolicyNotFound)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	// actor 想把別人設成 owner
	_, err := uc.CreateForVideo(context.Background(), domain.Actor{UserID: "me"}, CreatePolicyReq{
		VideoID:        1,
		SiteVisibility: domain.SitePrivateOwner,
		Owner:          domain.Owner{Kind: domain.OwnerUser, UserID: "someone-else"},
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestCreateForVideoSuccessGeneratesSecretAndReindexes(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(nil, domain.ErrPolicyNotFound)
	repo.On("CreateForVideo", mock.Anything).Return(nil)

	reindexer := &nopReindexer{}
	uc := NewVisibilityUseCase(repo, new(mockMembership), reindexer)

	policy, err := uc.CreateForVideo(context.Background(), domain.Actor{UserID: "me"}, CreatePolicyReq{
		VideoID:        1,
		SiteVisibility: domain.SitePrivateWithKey,
		Owner:          domain.Owner{Kind: domain.OwnerUser, UserID: "me"},
		EmbedDomains:   []string{"  Example.COM ", "other.org"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, policy.SecretKey)
	assert.Equal(t, string(domain.WidgetPublic), policy.WidgetVisibility)
	assert.Equal(t, "example.com,other.org", policy.EmbedAllowedDomains)
	assert.Equal(t, []uint{1}, reindexer.calls)
}

func TestCreateForVideoRejectsBadInput(t *testing.T) {
	repo := new(mockPolicyRepo)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	_, err := uc.CreateForVideo(context.Background(), domain.Actor{UserID: "me"}, CreatePolicyReq{
		VideoID:        1,
		SiteVisibility: domain.SitePublic,
		Owner:          domain.Owner{Kind: "robot"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)

	_, err = uc.CreateForVideo(context.Background(), domain.Actor{UserID: "me"}, CreatePolicyReq{
		VideoID:        1,
		SiteVisibility: "sort-of-public",
		Owner:          domain.Owner{Kind: domain.OwnerUser, UserID: "me"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidVisibility)
}

func TestDeleteForVideoPermission(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(userPolicy(1, domain.SitePrivateOwner, "owner"), nil)
	repo.On("DeleteForVideo", uint(1)).Return(nil)

	reindexer := &nopReindexer{}
	uc := NewVisibilityUseCase(repo, new(mockMembership), reindexer)

	err := uc.DeleteForVideo(context.Background(), domain.Actor{UserID: "stranger"}, 1)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	err = uc.DeleteForVideo(context.Background(), domain.Actor{UserID: "owner"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, reindexer.calls)
}

func TestVideoHasOwner(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(userPolicy(1, domain.SitePublic, "owner"), nil)
	repo.On("GetByVideoID", uint(2)).Return(nil, domain.ErrPolicyNotFound)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	has, err := uc.VideoHasOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = uc.VideoHasOwner(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGetPolicyForActorOwnerOnly(t *testing.T) {
	cases := []struct {
		name  string
		actor domain.Actor
		ok    bool
	}{
		{"owner reads", domain.Actor{UserID: "owner"}, true},
		{"superuser reads", domain.Actor{UserID: "root", IsSuperuser: true}, true},
		{"other user denied", domain.Actor{UserID: "stranger"}, false},
		{"anonymous denied", domain.Actor{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockPolicyRepo)
			repo.On("GetByVideoID", uint(1)).Return(userPolicy(1, domain.SitePrivateWithKey, "owner"), nil)
			uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

			policy, err := uc.GetPolicyForActor(context.Background(), tc.actor, 1)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, "secret-key-1", policy.SecretKey)
			} else {
				assert.ErrorIs(t, err, domain.ErrPermissionDenied)
				assert.Nil(t, policy)
			}
		})
	}
}

func TestGetPolicyForActorTeamMembership(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(1)).Return(teamPolicy(1, domain.SitePrivateOwner, 5), nil)

	membership := new(mockMembership)
	membership.On("IsMember", mock.Anything, uint(5), "member").Return(true, nil)
	membership.On("IsMember", mock.Anything, uint(5), "outsider").Return(false, nil)

	uc := NewVisibilityUseCase(repo, membership, &nopReindexer{})

	policy, err := uc.GetPolicyForActor(context.Background(), domain.Actor{UserID: "member"}, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(5), policy.OwnerTeamID)

	_, err = uc.GetPolicyForActor(context.Background(), domain.Actor{UserID: "outsider"}, 1)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestGetPolicyForActorMissingPolicy(t *testing.T) {
	repo := new(mockPolicyRepo)
	repo.On("GetByVideoID", uint(9)).Return(nil, domain.ErrPolicyNotFound)
	uc := NewVisibilityUseCase(repo, new(mockMembership), &nopReindexer{})

	_, err := uc.GetPolicyForActor(context.Background(), domain.Actor{UserID: "owner"}, 9)
	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
}
