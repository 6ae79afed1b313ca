package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/repositories"
	"github.com/PennQuinnDad/college-quest/pkg/search"
)

var validate = validator.New()

// AdminHandler handles catalog and allow list administration
type AdminHandler struct {
	colleges repositories.CollegeRepo
	schools  repositories.SchoolRepo
	emails   repositories.AllowedEmailRepo
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(colleges repositories.CollegeRepo, schools repositories.SchoolRepo, emails repositories.AllowedEmailRepo) *AdminHandler {
	return &AdminHandler{
		colleges: colleges,
		schools:  schools,
		emails:   emails,
	}
}

// CollegeRequest is the request body for creating or updating a college
type CollegeRequest struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name" validate:"required"`
	City               string   `json:"city" validate:"required"`
	State              string   `json:"state" validate:"required"`
	ZipCode            *string  `json:"zipCode"`
	Website            *string  `json:"website"`
	Region             *string  `json:"region"`
	Category           *string  `json:"category"`
	Type               *string  `json:"type"`
	Size               *string  `json:"size"`
	Enrollment         *int     `json:"enrollment" validate:"omitempty,min=0"`
	TuitionInState     *int     `json:"tuitionInState" validate:"omitempty,min=0"`
	TuitionOutOfState  *int     `json:"tuitionOutOfState" validate:"omitempty,min=0"`
	NetCost            *int     `json:"netCost" validate:"omitempty,min=0"`
	NetPricingGuidance *string  `json:"netPricingGuidance"`
	AcceptanceRate     *float64 `json:"acceptanceRate" validate:"omitempty,min=0,max=100"`
	SATMath            *int     `json:"satMath" validate:"omitempty,min=200,max=800"`
	SATReading         *int     `json:"satReading" validate:"omitempty,min=200,max=800"`
	ACTComposite       *int     `json:"actComposite" validate:"omitempty,min=1,max=36"`
	GraduationRate     *float64 `json:"graduationRate" validate:"omitempty,min=0,max=100"`
	Programs           []string `json:"programs"`
	Description        *string  `json:"description"`
	ImageURL           *string  `json:"imageUrl"`
	Jesuit             bool     `json:"jesuit"`
	ScorecardID        *string  `json:"scorecardId"`
}

// SchoolRequest is the request body for creating or updating a school
type SchoolRequest struct {
	Name        string  `json:"name" validate:"required"`
	CollegeID   string  `json:"collegeId" validate:"required"`
	Category    *string `json:"category"`
	CIPCode     *string `json:"cipCode"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
	Source      string  `json:"source"`
}

// AllowedEmailRequest is the request body for allowing an email
type AllowedEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// DeleteCollegesRequest is the request body for a bulk college delete
type DeleteCollegesRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// RegisterRoutes registers the admin routes
func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/auth", h.Auth)
	g.POST("/auth", h.Auth)

	colleges := g.Group("/colleges")
	colleges.GET("", h.ListColleges)
	colleges.POST("", h.CreateCollege)
	colleges.DELETE("", h.DeleteColleges)
	colleges.PUT("/:id", h.UpdateCollege)
	colleges.DELETE("/:id", h.DeleteCollege)

	schools := g.Group("/schools")
	schools.GET("", h.ListSchools)
	schools.POST("", h.CreateSchool)
	schools.PUT("/:id", h.UpdateSchool)
	schools.DELETE("/:id", h.DeleteSchool)

	emails := g.Group("/allowed-emails")
	emails.GET("", h.ListAllowedEmails)
	emails.POST("", h.AddAllowedEmail)
	emails.DELETE("/:id", h.RemoveAllowedEmail)
}

// Auth handles GET and POST /admin/auth. Reaching it at all means the
// admin gate accepted the credential.
func (h *AdminHandler) Auth(c echo.Context) error {
	return SuccessResponse(c, map[string]bool{"authenticated": true})
}

func (req *CollegeRequest) toModel() *models.College {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	college := &models.College{
		ID:                 id,
		Name:               req.Name,
		City:               req.City,
		State:              req.State,
		ZipCode:            req.ZipCode,
		Website:            req.Website,
		Region:             req.Region,
		Category:           req.Category,
		Type:               req.Type,
		Size:               req.Size,
		Enrollment:         req.Enrollment,
		TuitionInState:     req.TuitionInState,
		TuitionOutOfState:  req.TuitionOutOfState,
		NetCost:            req.NetCost,
		NetPricingGuidance: req.NetPricingGuidance,
		AcceptanceRate:     req.AcceptanceRate,
		SATMath:            req.SATMath,
		SATReading:         req.SATReading,
		ACTComposite:       req.ACTComposite,
		GraduationRate:     req.GraduationRate,
		Programs:           pq.StringArray(req.Programs),
		Description:        req.Description,
		ImageURL:           req.ImageURL,
		Jesuit:             req.Jesuit,
		ScorecardID:        req.ScorecardID,
	}
	if college.Programs == nil {
		college.Programs = pq.StringArray{}
	}
	return college
}

// ListColleges handles GET /admin/colleges. Same filter grammar as the
// public listing.
func (h *AdminHandler) ListColleges(c echo.Context) error {
	params, err := search.Parse(c.QueryParams())
	if err != nil {
		return err
	}

	result, err := h.colleges.Search(c.Request().Context(), params)
	if err != nil {
		return err
	}

	return SuccessResponse(c, result)
}

// DeleteColleges handles DELETE /admin/colleges
func (h *AdminHandler) DeleteColleges(c echo.Context) error {
	var req DeleteCollegesRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	deleted, err := h.colleges.DeleteMany(c.Request().Context(), req.IDs)
	if err != nil {
		return err
	}

	return SuccessResponse(c, map[string]int64{"deleted": deleted})
}

// ListSchools handles GET /admin/schools
func (h *AdminHandler) ListSchools(c echo.Context) error {
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

// CreateCollege handles POST /admin/colleges
func (h *AdminHandler) CreateCollege(c echo.Context) error {
	var req CollegeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	college, err := h.colleges.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return err
	}

	return CreatedResponse(c, college)
}

// UpdateCollege handles PUT /admin/colleges/:id
func (h *AdminHandler) UpdateCollege(c echo.Context) error {
	ctx := c.Request().Context()

	existing, err := h.colleges.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	var req CollegeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	req.ID = existing.ID
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	college := req.toModel()
	college.CreatedAt = existing.CreatedAt
	college.Latitude = existing.Latitude
	college.Longitude = existing.Longitude

	updated, err := h.colleges.Update(ctx, college)
	if err != nil {
		return err
	}

	return SuccessResponse(c, updated)
}

// DeleteCollege handles DELETE /admin/colleges/:id
func (h *AdminHandler) DeleteCollege(c echo.Context) error {
	if err := h.colleges.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return NoContentResponse(c)
}

// CreateSchool handles POST /admin/schools
func (h *AdminHandler) CreateSchool(c echo.Context) error {
	ctx := c.Request().Context()

	var req SchoolRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	// The parent college also provides the denormalized columns.
	college, err := h.colleges.GetByID(ctx, req.CollegeID)
	if err != nil {
		return err
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	school, err := h.schools.Create(ctx, &models.School{
		Name:         req.Name,
		CollegeID:    college.ID,
		CollegeName:  &college.Name,
		CollegeCity:  &college.City,
		CollegeState: &college.State,
		Category:     req.Category,
		CIPCode:      req.CIPCode,
		Website:      req.Website,
		Description:  req.Description,
		Source:       source,
	})
	if err != nil {
		return err
	}

	return CreatedResponse(c, school)
}

// UpdateSchool handles PUT /admin/schools/:id
func (h *AdminHandler) UpdateSchool(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	existing, err := h.schools.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var req SchoolRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}
	if req.CollegeID != existing.CollegeID {
		return BadRequest("collegeId cannot be changed")
	}

	existing.Name = req.Name
	existing.Category = req.Category
	existing.CIPCode = req.CIPCode
	existing.Website = req.Website
	existing.Description = req.Description
	if req.Source != "" {
		existing.Source = req.Source
	}

	updated, err := h.schools.Update(ctx, existing)
	if err != nil {
		return err
	}

	return SuccessResponse(c, updated)
}

// DeleteSchool handles DELETE /admin/schools/:id
func (h *AdminHandler) DeleteSchool(c echo.Context) error {
	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.schools.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return NoContentResponse(c)
}

// ListAllowedEmails handles GET /admin/allowed-emails
func (h *AdminHandler) ListAllowedEmails(c echo.Context) error {
	emails, err := h.emails.List(c.Request().Context())
	if err != nil {
		return err
	}

	return SuccessResponse(c, emails)
}

// AddAllowedEmail handles POST /admin/allowed-emails
func (h *AdminHandler) AddAllowedEmail(c echo.Context) error {
	var req AllowedEmailRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	entry, err := h.emails.Add(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	return CreatedResponse(c, entry)
}

// RemoveAllowedEmail handles DELETE /admin/allowed-emails/:id
func (h *AdminHandler) RemoveAllowedEmail(c echo.Context) error {
	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.emails.Remove(c.Request().Context(), id); err != nil {
		return err
	}

	return NoContentResponse(c)
}
