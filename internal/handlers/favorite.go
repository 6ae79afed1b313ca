package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/PennQuinnDad/college-quest/pkg/repositories"
)

// FavoriteHandler handles the caller's college bookmarks
type FavoriteHandler struct {
	favorites repositories.FavoriteRepo
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites repositories.FavoriteRepo) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// FavoriteRequest is the request body for bookmarking a college
type FavoriteRequest struct {
	CollegeID string `json:"collegeId" validate:"required"`
}

// RegisterRoutes registers the favorite routes
func (h *FavoriteHandler) RegisterRoutes(g *echo.Group) {
	favorites := g.Group("/favorites")
	favorites.GET("", h.List)
	favorites.GET("/ids", h.ListIDs)
	favorites.POST("", h.Create)
	favorites.GET("/:collegeId", h.Check)
	favorites.PUT("/:collegeId", h.Add)
	favorites.DELETE("/:collegeId", h.Remove)
}

// List handles GET /favorites
func (h *FavoriteHandler) List(c echo.Context) error {
	colleges, err := h.favorites.List(c.Request().Context())
	if err != nil {
		return err
	}

	return SuccessResponse(c, colleges)
}

// ListIDs handles GET /favorites/ids
func (h *FavoriteHandler) ListIDs(c echo.Context) error {
	ids, err := h.favorites.ListIDs(c.Request().Context())
	if err != nil {
		return err
	}

	return SuccessResponse(c, ids)
}

// Create handles POST /favorites. Adding an existing favorite
// succeeds.
func (h *FavoriteHandler) Create(c echo.Context) error {
	var req FavoriteRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if req.CollegeID == "" {
		return BadRequest("collegeId is required")
	}

	if err := h.favorites.Add(c.Request().Context(), req.CollegeID); err != nil {
		return err
	}

	return CreatedResponse(c, map[string]string{"collegeId": req.CollegeID})
}

// Check handles GET /favorites/:collegeId
func (h *FavoriteHandler) Check(c echo.Context) error {
	collegeID := c.Param("collegeId")
	if collegeID == "" {
		return BadRequest("missing collegeId")
	}

	isFavorite, err := h.favorites.IsFavorite(c.Request().Context(), collegeID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, map[string]bool{"isFavorite": isFavorite})
}

// Add handles PUT /favorites/:collegeId. Adding twice succeeds both
// times.
func (h *FavoriteHandler) Add(c echo.Context) error {
	collegeID := c.Param("collegeId")
	if collegeID == "" {
		return BadRequest("missing collegeId")
	}

	if err := h.favorites.Add(c.Request().Context(), collegeID); err != nil {
		return err
	}

	return NoContentResponse(c)
}

// Remove handles DELETE /favorites/:collegeId
func (h *FavoriteHandler) Remove(c echo.Context) error {
	collegeID := c.Param("collegeId")
	if collegeID == "" {
		return BadRequest("missing collegeId")
	}

	if err := h.favorites.Remove(c.Request().Context(), collegeID); err != nil {
		return err
	}

	return NoContentResponse(c)
}
