package app

import (
	"context"
	"testing"
	"time"

	"subtitle_platform_service/internal/account/domain"
	notifdomain "subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/pkg/encrypt"
	"subtitle_platform_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetNewNop()
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateUserStatus(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateUserInfo(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByUser(ctx context.Context, userQuery *domain.UserQuery) (*domain.User, error) {
	args := m.Called(ctx, userQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockRedisRepo struct {
	mock.Mock
}

func (m *mockRedisRepo) Set(ctx context.Context, key string, session domain.UserSession, ttl time.Duration) error {
	args := m.Called(ctx, key, session, ttl)
	return args.Error(0)
}

func (m *mockRedisRepo) Get(ctx context.Context, key string) (domain.UserSession, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.UserSession), args.Error(1)
}

func (m *mockRedisRepo) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockRedisRepo) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *mockRedisRepo) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

type stubTeamLister struct {
	teams []uint
}

func (s *stubTeamLister) TeamIDsForUser(userID string) ([]uint, error) {
	return s.teams, nil
}

type infoRecorder struct {
	notifdomain.NopDispatcher
	updatedTeams []uint
	updatedUsers []notifdomain.UserInfo
}

func (r *infoRecorder) UserInfoUpdated(ctx context.Context, teamID uint, user notifdomain.UserInfo) {
	r.updatedTeams = append(r.updatedTeams, teamID)
	r.updatedUsers = append(r.updatedUsers, user)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := encrypt.HashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	userRepo := new(mockUserRepo)
	redisRepo := new(mockRedisRepo)
	uc := NewUserUseCase(userRepo, 30*time.Minute, redisRepo, &stubTeamLister{}, &infoRecorder{})

	email := "user@example.com"
	userRepo.On("FindByUser", ctx, mock.MatchedBy(func(q *domain.UserQuery) bool {
		return q.Email != nil && *q.Email == email
	})).Return(&domain.User{
		ID: 1, UserID: "uid-1", Email: email, Password: hashed(t, "Pass1234!"),
	}, nil)
	redisRepo.On("Set", mock.Anything, "uid-1", mock.Anything, 30*time.Minute).Return(nil)
	userRepo.On("UpdateUserStatus", ctx, mock.Anything).Return(nil)

	token, err := uc.Login(ctx, email, "Pass1234!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// 錯誤密碼
	_, err = uc.Login(ctx, email, "wrongpass")
	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()

	userRepo := new(mockUserRepo)
	uc := NewUserUseCase(userRepo, 30*time.Minute, new(mockRedisRepo), &stubTeamLister{}, &infoRecorder{})

	userRepo.On("FindByUser", ctx, mock.Anything).Return(&domain.User{Email: "user@example.com"}, nil)

	err := uc.Register(ctx, "user@example.com", "Pass1234!", "U")
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	ctx := context.Background()

	userRepo := new(mockUserRepo)
	uc := NewUserUseCase(userRepo, 30*time.Minute, new(mockRedisRepo), &stubTeamLister{}, &infoRecorder{})

	userRepo.On("FindByUser", ctx, mock.Anything).Return(nil, domain.ErrUserNotFound)

	err := uc.Register(ctx, "user@example.com", "short", "U")
	assert.Error(t, err)
	userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUpdateUserInfoFansOutPerTeam(t *testing.T) {
	ctx := context.Background()

	userRepo := new(mockUserRepo)
	userRepo.On("FindByUser", ctx, mock.Anything).Return(&domain.User{
		UserID: "uid-1", Email: "old@example.com", DisplayName: "Old",
	}, nil)
	userRepo.On("UpdateUserInfo", ctx, mock.Anything).Return(nil)

	dispatcher := &infoRecorder{}
	lister := &stubTeamLister{teams: []uint{3, 7}}
	uc := NewUserUseCase(userRepo, 30*time.Minute, new(mockRedisRepo), lister, dispatcher)

	newName := "New Name"
	err := uc.UpdateUserInfo(ctx, "uid-1", UpdateUserInfoReq{DisplayName: &newName})
	require.NoError(t, err)

	assert.Equal(t, []uint{3, 7}, dispatcher.updatedTeams)
	require.Len(t, dispatcher.updatedUsers, 2)
	assert.Equal(t, "New Name", dispatcher.updatedUsers[0].DisplayName)
	assert.Equal(t, "old@example.com", dispatcher.updatedUsers[0].Email)
}

func TestResolveUser(t *testing.T) {
	ctx := context.Background()

	userRepo := new(mockUserRepo)
	userRepo.On("FindByUser", ctx, mock.MatchedBy(func(q *domain.UserQuery) bool {
		return q.UserID != nil && *q.UserID == "uid-1"
	})).Return(&domain.User{UserID: "uid-1", Email: "a@b.c", DisplayName: "A"}, nil)

	uc := NewUserUseCase(userRepo, 30*time.Minute, new(mockRedisRepo), &stubTeamLister{}, &infoRecorder{})

	info, err := uc.ResolveUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", info.Email)
	assert.Equal(t, "A", info.DisplayName)
}
