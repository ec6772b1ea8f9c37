package router

import (
	"subtitle_platform_service/internal/subtitles/api/handlers"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 註冊字幕相關的路由
func RegisterRoutes(app *fiber.App, subtitleHandler *handlers.SubtitleHandler) {
	auth := middlewares.JWTMiddleware()

	app.Post("/videos/:id/subtitles/:language", auth, subtitleHandler.AddVersion)
	app.Post("/videos/:id/subtitles/:language/publish", auth, subtitleHandler.Publish)
	app.Delete("/videos/:id/subtitles/:language", auth, subtitleHandler.DeleteLanguage)
	app.Get("/videos/:id/subtitles/:language", middlewares.OptionalJWTMiddleware(), subtitleHandler.GetContent)
}
