package handlers

import (
	"net/http"
	"strconv"

	"subtitle_platform_service/internal/notification/app"
	"subtitle_platform_service/internal/notification/domain"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler 通知設定與 ledger 的 HTTP 入口
type NotificationHandler struct {
	Usecase app.NotificationUseCase
}

type updateSettingsReq struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func teamIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid team id")
	}
	return uint(id), nil
}

// UpdateSettings upsert the team's webhook settings
func (h *NotificationHandler) UpdateSettings(c *fiber.Ctx) error {
	teamID, err := teamIDParam(c)
	if err != nil {
		return err
	}

	var req updateSettingsReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}
	if req.Type == "" {
		req.Type = app.TypeGenericWebhook
	}

	if err := h.Usecase.UpdateSettings(c.Context(), teamID, req.Type, req.URL); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "settings updated"})
}

// ListNotifications 查 ledger,新的在前
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	teamID, err := teamIDParam(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	notifications, err := h.Usecase.ListNotifications(c.Context(), teamID, limit)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	out := make([]fiber.Map, 0, len(notifications))
	for _, n := range notifications {
		entry := fiber.Map{
			"number":    n.Number,
			"url":       n.URL,
			"data":      n.Data,
			"timestamp": n.Timestamp,
		}
		if n.ResponseStatus != nil {
			entry["response_status"] = *n.ResponseStatus
		}
		if n.ErrorMessage != nil {
			entry["error_message"] = *n.ErrorMessage
		}
		out = append(out, entry)
	}
	return c.JSON(out)
}

// Resend 重送一筆已記錄的通知,會拿到新的編號
func (h *NotificationHandler) Resend(c *fiber.Ctx) error {
	teamID, err := teamIDParam(c)
	if err != nil {
		return err
	}
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid notification number"})
	}

	if err := h.Usecase.Resend(c.Context(), teamID, number); err != nil {
		if err == domain.ErrNotificationNotFound {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "notification enqueued"})
}
