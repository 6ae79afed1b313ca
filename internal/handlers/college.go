package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/PennQuinnDad/college-quest/pkg/repositories"
	"github.com/PennQuinnDad/college-quest/pkg/search"
	"github.com/PennQuinnDad/college-quest/pkg/similarity"
)

const (
	defaultSimilarLimit = 6
	maxSimilarLimit     = 60
	candidatePoolSize   = 200
)

// CollegeHandler handles college browsing requests
type CollegeHandler struct {
	colleges repositories.CollegeRepo
	schools  repositories.SchoolRepo
	scorer   *similarity.Scorer
	poolSize int
	maxLimit int
}

// NewCollegeHandler creates a new college handler. poolSize and
// maxLimit fall back to their defaults when non-positive.
func NewCollegeHandler(colleges repositories.CollegeRepo, schools repositories.SchoolRepo, poolSize, maxLimit int) *CollegeHandler {
	if poolSize < 1 {
		poolSize = candidatePoolSize
	}
	if maxLimit < 1 {
		maxLimit = maxSimilarLimit
	}
	return &CollegeHandler{
		colleges: colleges,
		schools:  schools,
		scorer:   similarity.NewScorer(),
		poolSize: poolSize,
		maxLimit: maxLimit,
	}
}

// RegisterRoutes registers the college routes
func (h *CollegeHandler) RegisterRoutes(g *echo.Group) {
	colleges := g.Group("/colleges")
	colleges.GET("", h.Search)
	colleges.GET("/autocomplete", h.Autocomplete)
	colleges.GET("/filters", h.Filters)
	colleges.GET("/filters/states", h.filterValues("state"))
	colleges.GET("/filters/regions", h.filterValues("region"))
	colleges.GET("/filters/types", h.filterValues("type"))
	colleges.GET("/filters/sizes", h.filterValues("size"))
	colleges.GET("/filters/acceptance-ranges", h.AcceptanceRanges)
	colleges.GET("/:id", h.Get)
	colleges.GET("/:id/similar", h.Similar)
	colleges.GET("/:id/schools", h.Schools)
}

// Search handles GET /colleges
func (h *CollegeHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	params, err := search.Parse(c.QueryParams())
	if err != nil {
		return err
	}

	result, err := h.colleges.Search(ctx, params)
	if err != nil {
		return err
	}

	return SuccessResponse(c, result)
}

// Get handles GET /colleges/:id
func (h *CollegeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	college, err := h.colleges.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return SuccessResponse(c, college)
}

// Similar handles GET /colleges/:id/similar
func (h *CollegeHandler) Similar(c echo.Context) error {
	ctx := c.Request().Context()

	limit := defaultSimilarLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return BadRequest("limit must be an integer")
		}
		limit = n
	}
	if limit < 1 {
		limit = defaultSimilarLimit
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	target, err := h.colleges.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	candidates, err := h.colleges.Candidates(ctx, target.ID, h.poolSize)
	if err != nil {
		return err
	}

	return SuccessResponse(c, h.scorer.Rank(*target, candidates, limit))
}

// Autocomplete handles GET /colleges/autocomplete
func (h *CollegeHandler) Autocomplete(c echo.Context) error {
	ctx := c.Request().Context()

	query := strings.TrimSpace(c.QueryParam("query"))
	if len(query) < 2 {
		return BadRequest("query must be at least 2 characters")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return BadRequest("limit must be an integer")
		}
		limit = n
	}

	suggestions, err := h.colleges.Autocomplete(ctx, query, limit)
	if err != nil {
		return err
	}

	return SuccessResponse(c, suggestions)
}

// FilterOptions is the GET /colleges/filters response.
type FilterOptions struct {
	States            []string `json:"states"`
	Regions           []string `json:"regions"`
	Types             []string `json:"types"`
	Sizes             []string `json:"sizes"`
	ProgramCategories []string `json:"programCategories"`
}

// Filters handles GET /colleges/filters
func (h *CollegeHandler) Filters(c echo.Context) error {
	ctx := c.Request().Context()

	options := FilterOptions{}
	var err error
	if options.States, err = h.colleges.DistinctValues(ctx, "state"); err != nil {
		return err
	}
	if options.Regions, err = h.colleges.DistinctValues(ctx, "region"); err != nil {
		return err
	}
	if options.Types, err = h.colleges.DistinctValues(ctx, "type"); err != nil {
		return err
	}
	if options.Sizes, err = h.colleges.DistinctValues(ctx, "size"); err != nil {
		return err
	}
	if options.ProgramCategories, err = h.schools.DistinctCategories(ctx); err != nil {
		return err
	}

	return SuccessResponse(c, options)
}

// filterValues builds a handler serving one filter dropdown.
func (h *CollegeHandler) filterValues(column string) echo.HandlerFunc {
	return func(c echo.Context) error {
		values, err := h.colleges.DistinctValues(c.Request().Context(), column)
		if err != nil {
			return err
		}
		return SuccessResponse(c, values)
	}
}

// AcceptanceRanges handles GET /colleges/filters/acceptance-ranges
func (h *CollegeHandler) AcceptanceRanges(c echo.Context) error {
	return SuccessResponse(c, search.AcceptanceRangeLabels)
}

// Schools handles GET /colleges/:id/schools
func (h *CollegeHandler) Schools(c echo.Context) error {
	ctx := c.Request().Context()

	// 404 for unknown colleges instead of an empty list.
	college, err := h.colleges.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	schools, err := h.schools.ListByCollegeID(ctx, college.ID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, schools)
}
