package handlers

import (
	"net/http"
	"time"

	"subtitle_platform_service/internal/account/app"
	"subtitle_platform_service/internal/account/domain"
	"subtitle_platform_service/pkg/logger"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler 帳號相關的 HTTP 入口
type UserHandler struct {
	Usecase app.UserUseCase
}

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateInfoReq struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
}

// Register create an account
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.Usecase.Register(c.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		if err == domain.ErrEmailExists {
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"msg": "create success"})
}

// Login exchange credentials for a JWT, also set as cookie
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	token, err := h.Usecase.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		logger.Log.Error("login failed", zap.String("email", req.Email), zap.String("err", err.Error()))
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"token": token})
}

// Logout invalidate the current session
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(middlewares.CookieToken)
	if token == "" {
		token = c.Query(middlewares.QueryToken)
	}
	if token == "" {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	if err := h.Usecase.Logout(c.Context(), token); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.ClearCookie(middlewares.CookieToken)
	return c.JSON(fiber.Map{"msg": "logout success"})
}

// UpdateInfo 更新帳號資料,會通知所屬 team
func (h *UserHandler) UpdateInfo(c *fiber.Ctx) error {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)

	var req updateInfoReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	err := h.Usecase.UpdateUserInfo(c.Context(), userID, app.UpdateUserInfoReq{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if err == domain.ErrUserNotFound {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"msg": "update success"})
}
