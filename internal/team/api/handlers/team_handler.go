package handlers

import (
	"net/http"
	"strconv"

	"subtitle_platform_service/internal/team/app"
	"subtitle_platform_service/internal/team/domain"
	"subtitle_platform_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// TeamHandler team 相關的 HTTP 入口
type TeamHandler struct {
	Usecase app.TeamUseCase
}

type createTeamReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type addMemberReq struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type changeRoleReq struct {
	Role string `json:"role"`
}

func teamIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid team id")
	}
	return uint(id), nil
}

// CreateTeam 建立 team,建立者自動成為 owner
func (h *TeamHandler) CreateTeam(c *fiber.Ctx) error {
	actorUserID, _ := c.Locals(middlewares.TokenUserID).(string)
	if actorUserID == "" {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	var req createTeamReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Slug == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "name and slug are required"})
	}

	team, err := h.Usecase.CreateTeam(c.Context(), req.Name, req.Slug, actorUserID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":   team.ID,
		"name": team.Name,
		"slug": team.Slug,
	})
}

// AddMember add a user to the team
func (h *TeamHandler) AddMember(c *fiber.Ctx) error {
	teamID, err := teamIDParam(c)
	if err != nil {
		return err
	}

	var req addMemberReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleContributor
	}

	if err := h.Usecase.AddMember(c.Context(), teamID, req.UserID, role); err != nil {
		switch err {
		case domain.ErrAlreadyMember:
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrInvalidRole:
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"msg": "member added"})
}

// RemoveMember remove a user from the team
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	teamID, err := teamIDParam(c)
	if err != nil {
		return err
	}
	userID := c.Params("user")

	if err := h.Usecase.RemoveMember(c.Context(), teamID, userID); err != nil {
		switch err {
		case domain.ErrNotMember:
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrLastOwner:
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"msg": "member removed"})
}

// ChangeRole 調整成員角色
func (h *TeamHandler) ChangeRole(c *fiber.Ctx) error {
	teamID, err := teamIDParam(c)
	if err != nil {
		return err
	}
	userID := c.Params("user")

	var req changeRoleReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.Usecase.ChangeRole(c.Context(), teamID, userID, domain.Role(req.Role)); err != nil {
		switch err {
		case domain.ErrNotMember:
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrLastOwner:
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case domain.ErrInvalidRole:
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"msg": "role updated"})
}

// ListMembers list the members of a team
func (h *TeamHandler) ListMembers(c *fiber.Ctx) error {
	teamID, err := teamIDParam(c)
	if err != nil {
		return err
	}

	members, err := h.Usecase.ListMembers(c.Context(), teamID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	out := make([]fiber.Map, 0, len(members))
	for _, m := range members {
		out = append(out, fiber.Map{"user_id": m.UserID, "role": m.Role})
	}
	return c.JSON(out)
}
