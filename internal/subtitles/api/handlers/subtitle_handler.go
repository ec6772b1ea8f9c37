package handlers

import (
	"net/http"
	"strconv"

	subapp "subtitle_platform_service/internal/subtitles/app"
	subdomain "subtitle_platform_service/internal/subtitles/domain"
	videoapp "subtitle_platform_service/internal/video/app"
	vishandlers "subtitle_platform_service/internal/visibility/api/handlers"
	visapp "subtitle_platform_service/internal/visibility/app"

	"github.com/gofiber/fiber/v2"
)

// SubtitleHandler 字幕相關的 HTTP 入口
type SubtitleHandler struct {
	Usecase    subapp.SubtitleUseCase
	Videos     videoapp.VideoUseCase
	Visibility visapp.VisibilityUseCase
}

// AddVersion 上傳新版本,body 就是字幕內容
func (h *SubtitleHandler) AddVersion(c *fiber.Ctx) error {
	content := c.Body()
	if len(content) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty subtitle content"})
	}

	version, err := h.Usecase.AddVersion(c.Context(), c.Params("id"), c.Params("language"), content)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"language": version.Language,
		"version":  version.Version,
	})
}

// Publish 標記一個版本已發佈
func (h *SubtitleHandler) Publish(c *fiber.Ctx) error {
	version, err := strconv.Atoi(c.Query("version"))
	if err != nil || version <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid version"})
	}

	err = h.Usecase.Publish(c.Context(), c.Params("id"), c.Params("language"), version)
	if err != nil {
		if err == subdomain.ErrVersionNotFound {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "published"})
}

// DeleteLanguage 移除一個語言的所有版本
func (h *SubtitleHandler) DeleteLanguage(c *fiber.Ctx) error {
	err := h.Usecase.DeleteLanguage(c.Context(), c.Params("id"), c.Params("language"))
	if err != nil {
		if err == subdomain.ErrLanguageNotFound {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "language removed"})
}

// GetContent 抓最新版本字幕,非公開影片要先通過 UserCanSee
func (h *SubtitleHandler) GetContent(c *fiber.Ctx) error {
	video, err := h.Videos.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "video not found"})
	}

	actor := vishandlers.ActorFromCtx(c)
	canSee, err := h.Visibility.UserCanSee(c.Context(), actor, video.ID, c.Query("secret"))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !canSee {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "video is private"})
	}

	content, err := h.Usecase.GetContent(c.Context(), c.Params("id"), c.Params("language"))
	if err != nil {
		if err == subdomain.ErrVersionNotFound {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "application/x-subrip")
	return c.Send(content)
}
