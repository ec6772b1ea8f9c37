package app

import (
	"context"
	"fmt"
	"time"

	"subtitle_platform_service/internal/account/domain"
	"subtitle_platform_service/internal/account/repository"
	notifdomain "subtitle_platform_service/internal/notification/domain"
	"subtitle_platform_service/pkg/database"
	"subtitle_platform_service/pkg/encrypt"
	"subtitle_platform_service/pkg/logger"
	token "subtitle_platform_service/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TeamLister reports which teams a user belongs to, so account changes can
// fan out to each team's notification handler.
type TeamLister interface {
	TeamIDsForUser(userID string) ([]uint, error)
}

// UpdateUserInfoReq carries the mutable account fields
type UpdateUserInfoReq struct {
	Email       *string
	DisplayName *string
}

// UserUseCase 這裡封裝了對外提供的應用服務
type UserUseCase interface {
	Register(ctx context.Context, email, password, displayName string) error
	FindUser(ctx context.Context, param *domain.UserQuery) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, userID string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error
	UpdateUserInfo(ctx context.Context, userID string, req UpdateUserInfoReq) error
	ResolveUser(ctx context.Context, userID string) (notifdomain.UserInfo, error)
}

type userUseCase struct {
	userRepo   repository.UserRepository
	sessionTTL time.Duration
	redisRepo  database.RedisRepository[domain.UserSession]
	teams      TeamLister
	dispatcher notifdomain.EventDispatcher
}

// NewUserUseCase 建立一個新的 UserUseCase
func NewUserUseCase(userRepo repository.UserRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.UserSession],
	teams TeamLister,
	dispatcher notifdomain.EventDispatcher,
) UserUseCase {
	return &userUseCase{
		userRepo:   userRepo,
		sessionTTL: sessionTTL,
		redisRepo:  redisRepo,
		teams:      teams,
		dispatcher: dispatcher,
	}
}

// Register
func (u *userUseCase) Register(ctx context.Context, email, password, displayName string) error {
	// 檢查 email 是否已存在
	if _, err := u.userRepo.FindByUser(ctx, &domain.UserQuery{Email: &email}); err == nil {
		return domain.ErrEmailExists
	}

	if err := encrypt.ValidatePasswordStrength(password); err != nil {
		return err
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		logger.Log.Errorf("password err :", err)
		return err
	}

	user := domain.User{
		UserID:      uuid.New().String(),
		Email:       email,
		Password:    pw,
		DisplayName: displayName,
	}

	logger.Log.Info(fmt.Sprintf("usecase Register : %v", user.Email))

	return u.userRepo.CreateUser(ctx, &user)
}

// FindUser 用查詢條件尋找使用者
func (u *userUseCase) FindUser(ctx context.Context, param *domain.UserQuery) (*domain.User, error) {
	return u.userRepo.FindByUser(ctx, param)
}

// Login
func (u *userUseCase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.userRepo.FindByUser(ctx, &domain.UserQuery{Email: &email})
	if err != nil {
		logger.Log.Error("email can't find!!!")
		return "", domain.ErrUserNotFound
	}

	if err = user.IsPasswordMatch(password); err != nil {
		logger.Log.Error("password can't match!!!")
		return "", err
	}

	user.Status = domain.UserStatusOnLine

	role := token.RoleUser
	if user.IsSuperuser {
		role = token.RoleAdmin
	}

	t, err := token.GenerateJWTWrapper(user.UserID, string(role))
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := domain.UserSession{
		Token:        t,
		UserID:       user.UserID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(u.sessionTTL),
	}

	u.redisRepo.Set(context.Background(), user.UserID, session, u.sessionTTL)

	if err := u.userRepo.UpdateUserStatus(ctx, user); err != nil {
		return "", err
	}

	return t, nil
}

// Logout
func (u *userUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("Logout err :", zap.String("err", err.Error()))
		return err
	}
	logger.Log.Debug("logout", zap.String("user", tokenInfo.UserID))

	u.redisRepo.Del(context.Background(), tokenInfo.UserID)

	return u.userRepo.UpdateUserStatus(ctx, &domain.User{
		UserID: tokenInfo.UserID,
		Status: domain.UserStatusOffLine,
	})
}

// ForceLogout 直接把該 userID 下所有 session 都清除
func (u *userUseCase) ForceLogout(ctx context.Context, userID string) error {
	u.redisRepo.Del(context.Background(), userID)

	return u.userRepo.UpdateUserStatus(ctx, &domain.User{
		UserID: userID,
		Status: domain.UserStatusOffLine,
	})
}

// CheckSessionTimeout
func (u *userUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("CheckSessionTimeout err :", zap.String("err", err.Error()))
		return true, err
	}

	ttl, err := u.redisRepo.GetTTL(context.Background(), tokenInfo.UserID)
	if err != nil {
		return true, err
	}

	if ttl > 0 {
		return false, nil
	}
	return true, nil
}

// ReconnectSession 重新連線時延長 session
func (u *userUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("ReconnectSession err :", zap.String("err", err.Error()))
		return err
	}
	logger.Log.Debug("ReconnectSession", zap.String("user", tokenInfo.UserID))

	u.redisRepo.ExtendTTL(context.Background(), tokenInfo.UserID, u.sessionTTL)

	return nil
}

// UpdateUserInfo 更新帳號資料並通知該使用者所屬的每個 team
func (u *userUseCase) UpdateUserInfo(ctx context.Context, userID string, req UpdateUserInfoReq) error {
	user, err := u.userRepo.FindByUser(ctx, &domain.UserQuery{UserID: &userID})
	if err != nil {
		return err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}

	if err := u.userRepo.UpdateUserInfo(ctx, user); err != nil {
		return err
	}

	teamIDs, err := u.teams.TeamIDsForUser(userID)
	if err != nil {
		logger.Log.Warn("list teams for user failed", zap.String("err", err.Error()))
		return nil
	}

	info := notifdomain.UserInfo{
		UserID:      user.UserID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
	for _, teamID := range teamIDs {
		u.dispatcher.UserInfoUpdated(ctx, teamID, info)
	}
	return nil
}

// ResolveUser 取得事件需要的使用者欄位
func (u *userUseCase) ResolveUser(ctx context.Context, userID string) (notifdomain.UserInfo, error) {
	user, err := u.userRepo.FindByUser(ctx, &domain.UserQuery{UserID: &userID})
	if err != nil {
		return notifdomain.UserInfo{}, err
	}
	return notifdomain.UserInfo{
		UserID:      user.UserID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}
