package repositories

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

const favoritesTable = "favorites"

// FavoriteRepository handles the per-user college bookmarks
type FavoriteRepository struct {
	*Repository
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db database.DB, logger ectologger.Logger) *FavoriteRepository {
	return &FavoriteRepository{Repository: NewRepository(db, logger)}
}

// List retrieves the caller's favorited colleges, most recent first.
func (r *FavoriteRepository) List(ctx context.Context) ([]models.College, error) {
	ctx, span := tracing.StartSpan(ctx, "FavoriteRepository.List")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT colleges.*
		FROM favorites
		JOIN colleges ON colleges.id = favorites.college_id
		WHERE favorites.user_id = $1
		ORDER BY favorites.created_at DESC, colleges.id ASC
	`

	var colleges []models.College
	if err := r.DB().SelectContext(ctx, &colleges, query, userID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list favorites")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list favorites")
	}

	if colleges == nil {
		colleges = []models.College{}
	}
	return colleges, nil
}

// ListIDs retrieves just the favorited college ids, most recent first.
func (r *FavoriteRepository) ListIDs(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "FavoriteRepository.ListIDs")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT college_id
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, college_id ASC
	`

	var ids []string
	if err := r.DB().SelectContext(ctx, &ids, query, userID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list favorite ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list favorites")
	}

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Add bookmarks a college for the caller. Adding an existing favorite
// succeeds without a second row; the unique constraint resolves the
// race between concurrent writers.
func (r *FavoriteRepository) Add(ctx context.Context, collegeID string) error {
	ctx, span := tracing.StartSpan(ctx, "FavoriteRepository.Add")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto(favoritesTable)
	sb.Cols("user_id", "college_id", "created_at")
	sb.Values(userID, collegeID, time.Now().UTC())
	sb.OnConflictDoNothing()

	query, args := sb.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		if database.IsForeignKeyViolation(err) {
			return NotFound("college %s not found", collegeID)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": collegeID}).Error("failed to add favorite")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add favorite")
	}

	return nil
}

// Remove deletes a bookmark. Removing a college that was never
// favorited is a success, matching Add's idempotency.
func (r *FavoriteRepository) Remove(ctx context.Context, collegeID string) error {
	ctx, span := tracing.StartSpan(ctx, "FavoriteRepository.Remove")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return err
	}

	db := database.NewDeleteBuilder()
	db.DeleteFrom(favoritesTable).Where(db.Equal("user_id", userID), db.Equal("college_id", collegeID))

	query, args := db.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": collegeID}).Error("failed to remove favorite")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove favorite")
	}

	return nil
}

// IsFavorite reports whether the caller has bookmarked a college.
func (r *FavoriteRepository) IsFavorite(ctx context.Context, collegeID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "FavoriteRepository.IsFavorite")
	defer span.End()

	userID, err := GetUserID(ctx)
	if err != nil {
		return false, err
	}

	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND college_id = $2)`

	var exists bool
	if err := r.DB().GetContext(ctx, &exists, query, userID, collegeID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": collegeID}).Error("failed to check favorite")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check favorite")
	}

	return exists, nil
}
