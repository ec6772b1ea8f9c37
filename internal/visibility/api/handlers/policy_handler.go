package handlers

import (
	"net/http"
	"strings"

	videoapp "subtitle_platform_service/internal/video/app"
	visapp "subtitle_platform_service/internal/visibility/app"
	"subtitle_platform_service/internal/visibility/domain"
	"subtitle_platform_service/pkg/middlewares"
	"subtitle_platform_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// ActorFromCtx 從 JWT locals 還原 acting identity,沒登入就是 anonymous
func ActorFromCtx(c *fiber.Ctx) domain.Actor {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	role, _ := c.Locals(middlewares.TokenRole).(string)
	return domain.Actor{
		UserID:      userID,
		IsSuperuser: role == string(token.RoleAdmin),
	}
}

// PolicyHandler visibility policy 的 HTTP 入口
type PolicyHandler struct {
	Usecase visapp.VisibilityUseCase
	Videos  videoapp.VideoUseCase
}

type createPolicyReq struct {
	SiteVisibility   string   `json:"site_visibility"`
	WidgetVisibility string   `json:"widget_visibility"`
	OwnerKind        string   `json:"owner_kind"`
	OwnerUserID      string   `json:"owner_user_id"`
	OwnerTeamID      uint     `json:"owner_team_id"`
	EmbedDomains     []string `json:"embed_domains"`
}

func (h *PolicyHandler) resolveVideo(c *fiber.Ctx) (uint, error) {
	video, err := h.Videos.Get(c.Context(), c.Params("id"))
	if err != nil {
		return 0, c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "video not found"})
	}
	return video.ID, nil
}

// CreatePolicy attach a policy to a video. 409 when one already exists,
// 403 when the actor cannot act for the requested owner.
func (h *PolicyHandler) CreatePolicy(c *fiber.Ctx) error {
	videoID, err := h.resolveVideo(c)
	if err != nil {
		return err
	}

	var req createPolicyReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	actor := ActorFromCtx(c)
	policy, err := h.Usecase.CreateForVideo(c.Context(), actor, visapp.CreatePolicyReq{
		VideoID:          videoID,
		SiteVisibility:   domain.SiteVisibility(req.SiteVisibility),
		WidgetVisibility: domain.WidgetVisibility(req.WidgetVisibility),
		Owner: domain.Owner{
			Kind:   domain.OwnerKind(req.OwnerKind),
			UserID: req.OwnerUserID,
			TeamID: req.OwnerTeamID,
		},
		EmbedDomains: req.EmbedDomains,
	})
	if err != nil {
		switch err {
		case domain.ErrPolicyExists:
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrPermissionDenied:
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrInvalidOwner, domain.ErrInvalidVisibility:
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(http.StatusCreated).JSON(policyJSON(policy))
}

// DeletePolicy remove the policy and restore public visibility
func (h *PolicyHandler) DeletePolicy(c *fiber.Ctx) error {
	videoID, err := h.resolveVideo(c)
	if err != nil {
		return err
	}

	if err := h.Usecase.DeleteForVideo(c.Context(), ActorFromCtx(c), videoID); err != nil {
		switch err {
		case domain.ErrPolicyNotFound:
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrPermissionDenied:
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"msg": "policy removed"})
}

// GetPolicy read the policy for a video. Owner only: the response carries the
// secret key for private-with-key policies.
func (h *PolicyHandler) GetPolicy(c *fiber.Ctx) error {
	videoID, err := h.resolveVideo(c)
	if err != nil {
		return err
	}

	policy, err := h.Usecase.GetPolicyForActor(c.Context(), ActorFromCtx(c), videoID)
	if err != nil {
		switch err {
		case domain.ErrPolicyNotFound:
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrPermissionDenied:
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(policyJSON(policy))
}

// GetWidget embed 視窗的可見性判斷,帶 ?domain= 詢問
func (h *PolicyHandler) GetWidget(c *fiber.Ctx) error {
	video, err := h.Videos.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "video not found"})
	}

	referringDomain := c.Query("domain")
	allowed, err := h.Usecase.CanShowWidget(c.Context(), video.ID, referringDomain)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !allowed {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "widget not allowed for this domain"})
	}

	return c.JSON(fiber.Map{
		"video_id": video.VideoID,
		"title":    video.Title,
		"language": video.Language,
	})
}

func policyJSON(p *domain.VisibilityPolicy) fiber.Map {
	out := fiber.Map{
		"video_id":          p.VideoID,
		"site_visibility":   p.SiteVisibility,
		"widget_visibility": p.WidgetVisibility,
		"owner_kind":        p.OwnerKind,
	}
	if p.OwnerKind == string(domain.OwnerUser) {
		out["owner_user_id"] = p.OwnerUserID
	} else {
		out["owner_team_id"] = p.OwnerTeamID
	}
	if p.SiteVisibility == string(domain.SitePrivateWithKey) {
		out["secret_key"] = p.SecretKey
	}
	if p.EmbedAllowedDomains != "" {
		out["embed_domains"] = strings.Split(p.EmbedAllowedDomains, ",")
	}
	return out
}
