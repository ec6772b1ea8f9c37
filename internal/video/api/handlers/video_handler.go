package handlers

import (
	"net/http"

	videoapp "subtitle_platform_service/internal/video/app"
	"subtitle_platform_service/internal/video/domain"
	vishandlers "subtitle_platform_service/internal/visibility/api/handlers"
	visapp "subtitle_platform_service/internal/visibility/app"

	"github.com/gofiber/fiber/v2"
)

// VideoHandler 影片相關的 HTTP 入口。讀取單部影片會先過 visibility engine。
type VideoHandler struct {
	Usecase    videoapp.VideoUseCase
	Visibility visapp.VisibilityUseCase
}

type createVideoReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Duration    uint   `json:"duration"`
	TeamID      *uint  `json:"team_id"`
}

type moveTeamReq struct {
	TeamID uint `json:"team_id"`
}

// CreateVideo create a video record
func (h *VideoHandler) CreateVideo(c *fiber.Ctx) error {
	var req createVideoReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Title == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	video, err := h.Usecase.Create(c.Context(), domain.CreateVideoReq{
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		Duration:    req.Duration,
		TeamID:      req.TeamID,
	})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"video_id": video.VideoID,
		"title":    video.Title,
	})
}

// GetVideo 讀影片。非公開影片要通過 UserCanSee,可帶 ?secret= 用金鑰開門。
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	video, err := h.Usecase.Get(c.Context(), c.Params("id"))
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

	return c.JSON(fiber.Map{
		"video_id":    video.VideoID,
		"title":       video.Title,
		"description": video.Description,
		"language":    video.Language,
		"duration":    video.Duration,
		"team_id":     video.TeamID,
		"is_public":   video.IsPublic,
	})
}

// MoveToTeam 把影片移到另一個 team
func (h *VideoHandler) MoveToTeam(c *fiber.Ctx) error {
	var req moveTeamReq
	if err := c.BodyParser(&req); err != nil || req.TeamID == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "team_id is required"})
	}

	if err := h.Usecase.MoveToTeam(c.Context(), c.Params("id"), req.TeamID); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "video moved"})
}

// RemoveFromTeam detach the video from its team
func (h *VideoHandler) RemoveFromTeam(c *fiber.Ctx) error {
	if err := h.Usecase.RemoveFromTeam(c.Context(), c.Params("id")); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "video detached"})
}

// Search 全站搜尋,只回公開影片
func (h *VideoHandler) Search(c *fiber.Ctx) error {
	keyword := c.Query("q")
	videos, err := h.Usecase.Search(c.Context(), keyword)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "search failed"})
	}
	return c.JSON(videos)
}
