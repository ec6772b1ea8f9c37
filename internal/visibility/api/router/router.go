package router

import (
	"subtitle_platform_service/internal/visibility/api/handlers"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 註冊 visibility policy 相關的路由
func RegisterRoutes(app *fiber.App, policyHandler *handlers.PolicyHandler) {
	auth := middlewares.JWTMiddleware()

	app.Post("/videos/:id/policy", auth, policyHandler.CreatePolicy)
	app.Delete("/videos/:id/policy", auth, policyHandler.DeletePolicy)
	app.Get("/videos/:id/policy", auth, policyHandler.GetPolicy)

	// widget 檢查不需要登入
	app.Get("/widget/:id", policyHandler.GetWidget)
}
