package router

import (
	"subtitle_platform_service/internal/account/api/handlers"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 註冊帳號相關的路由
func RegisterRoutes(app *fiber.App, userHandler *handlers.UserHandler) {
	app.Post("/register", userHandler.Register)
	app.Post("/login", userHandler.Login)
	app.Post("/logout", userHandler.Logout)
	app.Put("/me", middlewares.JWTMiddleware(), userHandler.UpdateInfo)
}
