package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/PennQuinnDad/college-quest/pkg/repositories"
)

// SchoolHandler serves the program browsing endpoints
type SchoolHandler struct {
	schools repositories.SchoolRepo
}

// NewSchoolHandler creates a new school handler
func NewSchoolHandler(schools repositories.SchoolRepo) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// RegisterRoutes registers the school routes
func (h *SchoolHandler) RegisterRoutes(g *echo.Group) {
	schools := g.Group("/schools")
	schools.GET("/programs", h.Programs)
	schools.GET("/categories", h.Categories)
}

// Programs handles GET /schools/programs. collegeIds narrows the
// listing to a comma separated set of colleges.
func (h *SchoolHandler) Programs(c echo.Context) error {
	var collegeIDs []string
	if raw := c.QueryParam("collegeIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				collegeIDs = append(collegeIDs, id)
			}
		}
	}

	schools, err := h.schools.List(c.Request().Context(), collegeIDs)
	if err != nil {
		return err
	}

	return SuccessResponse(c, schools)
}

// Categories handles GET /schools/categories
func (h *SchoolHandler) Categories(c echo.Context) error {
	categories, err := h.schools.DistinctCategories(c.Request().Context())
	if err != nil {
		return err
	}

	return SuccessResponse(c, categories)
}
