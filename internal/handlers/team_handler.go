package handlers

import (
	"net/http"

	"marketing-ops/internal/services"
	"marketing-ops/models"

	"github.com/labstack/echo/v5"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) ListMembers(c echo.Context) error {
	members, err := h.teamService.List(c.Request().Context())
	if err != nil {
		return fromServiceError("Failed to list team members", err)
	}
	return success(c, http.StatusOK, map[string]any{"members": members})
}

func (h *TeamHandler) CreateMember(c echo.Context) error {
	var req models.TeamMemberInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	member, err := h.teamService.Create(c.Request().Context(), req)
	if err != nil {
		return fromServiceError("Failed to create team member", err)
	}
	return success(c, http.StatusCreated, map[string]any{"member": member})
}

func (h *TeamHandler) UpdateMember(c echo.Context) error {
	var req models.TeamMemberInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	member, err := h.teamService.Update(c.Request().Context(), c.PathParam("id"), req)
	if err != nil {
		return fromServiceError("Failed to update team member", err)
	}
	return success(c, http.StatusOK, map[string]any{"member": member})
}

func (h *TeamHandler) DeleteMember(c echo.Context) error {
	id := c.PathParam("id")
	if err := h.teamService.Delete(c.Request().Context(), id); err != nil {
		return fromServiceError("Failed to delete team member", err)
	}
	return success(c, http.StatusOK, map[string]any{"id": id})
}

func (h *TeamHandler) GetProfile(c echo.Context) error {
	profile, err := h.teamService.GetProfile(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return fromServiceError("Failed to get profile", err)
	}
	return success(c, http.StatusOK, map[string]any{"profile": profile})
}

// UpsertProfile - Update a profile, creating it on first use
func (h *TeamHandler) UpsertProfile(c echo.Context) error {
	var req models.UserProfileInput
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid request body", err)
	}

	profile, err := h.teamService.UpsertProfile(c.Request().Context(), c.PathParam("id"), req)
	if err != nil {
		return fromServiceError("Failed to save profile", err)
	}
	return success(c, http.StatusOK, map[string]any{"profile": profile})
}
