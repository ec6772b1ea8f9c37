package router

import (
	"subtitle_platform_service/internal/video/api/handlers"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 註冊影片相關的路由
func RegisterRoutes(app *fiber.App, videoHandler *handlers.VideoHandler) {
	auth := middlewares.JWTMiddleware()

	app.Post("/videos", auth, videoHandler.CreateVideo)
	app.Put("/videos/:id/team", auth, videoHandler.MoveToTeam)
	app.Delete("/videos/:id/team", auth, videoHandler.RemoveFromTeam)

	// 讀取跟搜尋開放匿名,visibility engine 自己決定擋不擋
	app.Get("/videos/:id", middlewares.OptionalJWTMiddleware(), videoHandler.GetVideo)
	app.Get("/search", videoHandler.Search)
}
