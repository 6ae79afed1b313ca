package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/PennQuinnDad/college-quest/pkg/repositories"
)

// MeHandler serves the authenticated user's own profile
type MeHandler struct {
	profiles repositories.ProfileRepo
}

// NewMeHandler creates a new me handler
func NewMeHandler(profiles repositories.ProfileRepo) *MeHandler {
	return &MeHandler{profiles: profiles}
}

// RegisterRoutes registers the me routes
func (h *MeHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Get)
}

// Get handles GET /me
func (h *MeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := repositories.GetUserID(ctx)
	if err != nil {
		return err
	}

	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, profile)
}
