package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/repositories"
)

// FolderHandler handles the caller's favorite folders
type FolderHandler struct {
	folders repositories.FolderRepo
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders repositories.FolderRepo) *FolderHandler {
	return &FolderHandler{folders: folders}
}

// CreateFolderRequest is the request body for creating a folder
type CreateFolderRequest struct {
	Name  string  `json:"name" validate:"required"`
	Color *string `json:"color,omitempty"`
}

// UpdateFolderRequest is the request body for updating a folder
type UpdateFolderRequest struct {
	Name     *string `json:"name,omitempty"`
	Color    *string `json:"color,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// FolderItemRequest is the request body for filing a college
type FolderItemRequest struct {
	CollegeID string `json:"collegeId" validate:"required"`
}

// RegisterRoutes registers the folder routes
func (h *FolderHandler) RegisterRoutes(g *echo.Group) {
	folders := g.Group("/folders")
	folders.GET("", h.List)
	folders.POST("", h.Create)
	folders.GET("/all-items", h.ListAllItems)
	folders.GET("/:folderId", h.Get)
	folders.PATCH("/:folderId", h.Update)
	folders.PUT("/:folderId", h.Update)
	folders.DELETE("/:folderId", h.Delete)
	folders.GET("/:folderId/items", h.ListItems)
	folders.POST("/:folderId/items", h.AddItem)
	folders.DELETE("/:folderId/items/:collegeId", h.RemoveItem)
}

// List handles GET /folders
func (h *FolderHandler) List(c echo.Context) error {
	folders, err := h.folders.List(c.Request().Context())
	if err != nil {
		return err
	}

	return SuccessResponse(c, folders)
}

// Create handles POST /folders
func (h *FolderHandler) Create(c echo.Context) error {
	var req CreateFolderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return BadRequest("name is required")
	}

	folder, err := h.folders.Create(c.Request().Context(), &models.Folder{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		return err
	}

	return CreatedResponse(c, folder)
}

// Get handles GET /folders/:folderId
func (h *FolderHandler) Get(c echo.Context) error {
	id, err := ParseUUID(c, "folderId")
	if err != nil {
		return err
	}

	folder, err := h.folders.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, folder)
}

// Update handles PATCH /folders/:folderId
func (h *FolderHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "folderId")
	if err != nil {
		return err
	}

	existing, err := h.folders.Get(ctx, id)
	if err != nil {
		return err
	}

	var req UpdateFolderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return BadRequest("name cannot be empty")
		}
		existing.Name = name
	}
	if req.Color != nil {
		existing.Color = req.Color
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return BadRequest("position cannot be negative")
		}
		existing.Position = *req.Position
	}

	updated, err := h.folders.Update(ctx, existing)
	if err != nil {
		return err
	}

	return SuccessResponse(c, updated)
}

// Delete handles DELETE /folders/:folderId
func (h *FolderHandler) Delete(c echo.Context) error {
	id, err := ParseUUID(c, "folderId")
	if err != nil {
		return err
	}

	if err := h.folders.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return NoContentResponse(c)
}

// ListItems handles GET /folders/:folderId/items
func (h *FolderHandler) ListItems(c echo.Context) error {
	id, err := ParseUUID(c, "folderId")
	if err != nil {
		return err
	}

	colleges, err := h.folders.ListItems(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, colleges)
}

// ListAllItems handles GET /folders/all-items
func (h *FolderHandler) ListAllItems(c echo.Context) error {
	items, err := h.folders.ListAllItems(c.Request().Context())
	if err != nil {
		return err
	}

	return SuccessResponse(c, items)
}

// AddItem handles POST /folders/:folderId/items
func (h *FolderHandler) AddItem(c echo.Context) error {
	id, err := ParseUUID(c, "folderId")
	if err != nil {
		return err
	}

	var req FolderItemRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if req.CollegeID == "" {
		return BadRequest("collegeId is required")
	}

	if err := h.folders.AddItem(c.Request().Context(), id, req.CollegeID); err != nil {
		return err
	}

	return CreatedResponse(c, map[string]string{"folderId": id.String(), "collegeId": req.CollegeID})
}

// RemoveItem handles DELETE /folders/:folderId/items/:collegeId
func (h *FolderHandler) RemoveItem(c echo.Context) error {
	id, err := ParseUUID(c, "folderId")
	if err != nil {
		return err
	}

	collegeID := c.Param("collegeId")
	if collegeID == "" {
		return BadRequest("missing collegeId")
	}

	if err := h.folders.RemoveItem(c.Request().Context(), id, collegeID); err != nil {
		return err
	}

	return NoContentResponse(c)
}
