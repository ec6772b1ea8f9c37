package router

import (
	"subtitle_platform_service/internal/notification/api/handlers"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 註冊通知相關的路由
func RegisterRoutes(app *fiber.App, notificationHandler *handlers.NotificationHandler) {
	auth := middlewares.JWTMiddleware()

	app.Put("/teams/:id/notifications", auth, notificationHandler.UpdateSettings)
	app.Get("/teams/:id/notifications", auth, notificationHandler.ListNotifications)
	app.Post("/teams/:id/notifications/:number/resend", auth, notificationHandler.Resend)
}
