package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

const (
	foldersTable     = "favorite_folders"
	folderItemsTable = "favorite_folder_items"
)

var folderStruct = database.NewStruct(new(models.Folder))

// FolderRepository handles user-owned favorite folders and their
// college memberships. Every operation is scoped to the caller.
type FolderRepository struct {
	*Repository
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db database.DB, logger ectologger.Logger) *FolderRepository {
	return &FolderRepository{Repository: NewRepository(db, logger)}
}

// List retrieves the caller's folders in display order.
func (r *FolderRepository) List(ctx context.Context) ([]models.Folder, error) {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.List")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := folderStruct.SelectFrom(foldersTable)
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("position ASC", "created_at ASC")

	query, args := sb.Build()
	var folders []models.Folder
	if err := r.DB().SelectContext(ctx, &folders, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list folders")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list folders")
	}

	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

// Get retrieves one of the caller's folders
func (r *FolderRepository) Get(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.Get")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sb := folderStruct.SelectFrom(foldersTable)
	sb.Where(sb.Equal("id", id), sb.Equal("user_id", userID))

	query, args := sb.Build()
	var folder models.Folder
	err = r.DB().GetContext(ctx, &folder, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("folder %s not found", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"folder_id": id}).Error("failed to get folder")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get folder")
	}

	return &folder, nil
}

// Create adds a folder at the end of the caller's display order. Each
// user is capped at MaxFoldersPerUser; duplicate names are rejected by
// the unique constraint.
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.Create")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	count, err := r.countForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxFoldersPerUser {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "folder limit of %d reached", models.MaxFoldersPerUser)
	}

	folder.ID = uuid.New()
	folder.UserID = userID
	now := time.Now().UTC()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	query := `
		INSERT INTO favorite_folders (id, user_id, name, color, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM favorite_folders WHERE user_id = $2),
			$5, $5)
		RETURNING position
	`

	err = r.DB().QueryRowContext(ctx, query, folder.ID, folder.UserID, folder.Name, folder.Color, now).Scan(&folder.Position)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "folder %q already exists", folder.Name)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"folder_name": folder.Name}).Error("failed to create folder")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create folder")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"folder_id": folder.ID}).Info("created folder")
	return folder, nil
}

// Update renames or recolors one of the caller's folders
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.Update")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	folder.UpdatedAt = time.Now().UTC()

	ub := database.NewUpdateBuilder()
	ub.Update(foldersTable)
	ub.Set(
		ub.Assign("name", folder.Name),
		ub.Assign("color", folder.Color),
		ub.Assign("position", folder.Position),
		ub.Assign("updated_at", folder.UpdatedAt),
	)
	ub.Where(ub.Equal("id", folder.ID), ub.Equal("user_id", userID))

	query, args := ub.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "folder %q already exists", folder.Name)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"folder_id": folder.ID}).Error("failed to update folder")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update folder")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, NotFound("folder %s not found", folder.ID)
	}

	folder.UserID = userID
	return folder, nil
}

// Delete removes one of the caller's folders and its memberships
func (r *FolderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.Delete")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	db := database.NewDeleteBuilder()
	db.DeleteFrom(foldersTable).Where(db.Equal("id", id), db.Equal("user_id", userID))

	query, args := db.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"folder_id": id}).Error("failed to delete folder")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete folder")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NotFound("folder %s not found", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"folder_id": id}).Info("deleted folder")
	return nil
}

// AddItem places a college into one of the caller's folders. The
// ownership check doubles as the folder existence check.
func (r *FolderRepository) AddItem(ctx context.Context, folderID uuid.UUID, collegeID string) error {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.AddItem")
	defer span.End()

	if _, err := r.Get(ctx, folderID); err != nil {
		return err
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto(folderItemsTable)
	sb.Cols("folder_id", "college_id", "created_at")
	sb.Values(folderID, collegeID, time.Now().UTC())

	query, args := sb.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return httperror.NewHTTPErrorf(http.StatusConflict, "college %s is already in folder", collegeID)
		}
		if database.IsForeignKeyViolation(err) {
			return NotFound("college %s not found", collegeID)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"folder_id": folderID, "college_id": collegeID}).Error("failed to add folder item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add college to folder")
	}

	return nil
}

// RemoveItem takes a college out of one of the caller's folders
func (r *FolderRepository) RemoveItem(ctx context.Context, folderID uuid.UUID, collegeID string) error {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.RemoveItem")
	defer span.End()

	if _, err := r.Get(ctx, folderID); err != nil {
		return err
	}

	db := database.NewDeleteBuilder()
	db.DeleteFrom(folderItemsTable).Where(db.Equal("folder_id", folderID), db.Equal("college_id", collegeID))

	query, args := db.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"folder_id": folderID, "college_id": collegeID}).Error("failed to remove folder item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove college from folder")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NotFound("college %s is not in folder", collegeID)
	}

	return nil
}

// ListItems retrieves the colleges in one of the caller's folders
func (r *FolderRepository) ListItems(ctx context.Context, folderID uuid.UUID) ([]models.College, error) {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.ListItems")
	defer span.End()

	if _, err := r.Get(ctx, folderID); err != nil {
		return nil, err
	}

	query := `
		SELECT colleges.*
		FROM favorite_folder_items
		JOIN colleges ON colleges.id = favorite_folder_items.college_id
		WHERE favorite_folder_items.folder_id = $1
		ORDER BY favorite_folder_items.created_at ASC, colleges.id ASC
	`

	var colleges []models.College
	if err := r.DB().SelectContext(ctx, &colleges, query, folderID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"folder_id": folderID}).Error("failed to list folder items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list folder colleges")
	}

	if colleges == nil {
		colleges = []models.College{}
	}
	return colleges, nil
}

// ListAllItems retrieves every folder membership the caller has, for
// rendering folder badges on listings in one round trip.
func (r *FolderRepository) ListAllItems(ctx context.Context) ([]models.FolderItem, error) {
	ctx, span := tracing.StartSpan(ctx, "FolderRepository.ListAllItems")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT favorite_folder_items.folder_id, favorite_folder_items.college_id, favorite_folder_items.created_at
		FROM favorite_folder_items
		JOIN favorite_folders ON favorite_folders.id = favorite_folder_items.folder_id
		WHERE favorite_folders.user_id = $1
		ORDER BY favorite_folder_items.created_at ASC
	`

	var items []models.FolderItem
	if err := r.DB().SelectContext(ctx, &items, query, userID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list folder memberships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list folder memberships")
	}

	if items == nil {
		items = []models.FolderItem{}
	}
	return items, nil
}

func (r *FolderRepository) countForUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM favorite_folders WHERE user_id = $1`

	var count int
	if err := r.DB().GetContext(ctx, &count, query, userID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count folders")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create folder")
	}
	return count, nil
}
