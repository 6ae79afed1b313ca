package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

const profilesTable = "profiles"

var profileStruct = database.NewStruct(new(models.Profile))

// ProfileRepository handles the local mirror of identity provider users
type ProfileRepository struct {
	*Repository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DB, logger ectologger.Logger) *ProfileRepository {
	return &ProfileRepository{Repository: NewRepository(db, logger)}
}

// Upsert records the user on sign-in, refreshing the email and display
// name each time since the provider owns them.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	ctx, span := tracing.StartSpan(ctx, "ProfileRepository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	profile.Email = strings.ToLower(profile.Email)
	if profile.Role == "" {
		profile.Role = models.RoleUser
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	ib := profileStruct.InsertInto(profilesTable, profile)
	ub := ib.OnConflict("id")
	ub.Set(
		ub.Assign("email", database.Excluded("email")),
		ub.Assign("display_name", database.Excluded("display_name")),
		ub.Assign("updated_at", now),
	)

	query, args := ib.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"user_id": profile.ID}).Error("failed to upsert profile")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save profile")
	}

	return nil
}

// Get retrieves a profile by user id
func (r *ProfileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	ctx, span := tracing.StartSpan(ctx, "ProfileRepository.Get")
	defer span.End()

	sb := profileStruct.SelectFrom(profilesTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var profile models.Profile
	err := r.DB().GetContext(ctx, &profile, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("profile %s not found", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"user_id": id}).Error("failed to get profile")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get profile")
	}

	return &profile, nil
}
