package router

import (
	"subtitle_platform_service/internal/team/api/handlers"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 註冊 team 相關的路由
func RegisterRoutes(app *fiber.App, teamHandler *handlers.TeamHandler) {
	auth := middlewares.JWTMiddleware()

	app.Post("/teams", auth, teamHandler.CreateTeam)
	app.Post("/teams/:id/members", auth, teamHandler.AddMember)
	app.Delete("/teams/:id/members/:user", auth, teamHandler.RemoveMember)
	app.Put("/teams/:id/members/:user/role", auth, teamHandler.ChangeRole)
	app.Get("/teams/:id/members", auth, teamHandler.ListMembers)
}
