package repositories

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

const allowedEmailsTable = "allowed_emails"

var allowedEmailStruct = database.NewStruct(new(models.AllowedEmail))

// AllowedEmailRepository handles the sign-in allow list. Emails are
// stored and compared lowercase.
type AllowedEmailRepository struct {
	*Repository
}

// NewAllowedEmailRepository creates a new allowed email repository
func NewAllowedEmailRepository(db database.DB, logger ectologger.Logger) *AllowedEmailRepository {
	return &AllowedEmailRepository{Repository: NewRepository(db, logger)}
}

// List retrieves the whole allow list
func (r *AllowedEmailRepository) List(ctx context.Context) ([]models.AllowedEmail, error) {
	ctx, span := tracing.StartSpan(ctx, "AllowedEmailRepository.List")
	defer span.End()

	sb := allowedEmailStruct.SelectFrom(allowedEmailsTable)
	sb.OrderBy("email ASC")

	query, args := sb.Build()
	var emails []models.AllowedEmail
	if err := r.DB().SelectContext(ctx, &emails, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list allowed emails")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list allowed emails")
	}

	if emails == nil {
		emails = []models.AllowedEmail{}
	}
	return emails, nil
}

// Add puts an email on the allow list
func (r *AllowedEmailRepository) Add(ctx context.Context, email string) (*models.AllowedEmail, error) {
	ctx, span := tracing.StartSpan(ctx, "AllowedEmailRepository.Add")
	defer span.End()

	entry := models.AllowedEmail{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		CreatedAt: time.Now().UTC(),
	}

	sb := allowedEmailStruct.InsertInto(allowedEmailsTable, &entry)
	query, args := sb.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "%s is already allowed", entry.Email)
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to add allowed email")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to add allowed email")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"email": entry.Email}).Info("added allowed email")
	return &entry, nil
}

// Remove takes an email off the allow list
func (r *AllowedEmailRepository) Remove(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "AllowedEmailRepository.Remove")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(allowedEmailsTable).Where(db.Equal("id", id))

	query, args := db.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to remove allowed email")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove allowed email")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NotFound("allowed email %s not found", id)
	}

	return nil
}

// IsAllowed reports whether an email may sign in.
func (r *AllowedEmailRepository) IsAllowed(ctx context.Context, email string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "AllowedEmailRepository.IsAllowed")
	defer span.End()

	query := `SELECT EXISTS(SELECT 1 FROM allowed_emails WHERE email = LOWER($1))`

	var allowed bool
	if err := r.DB().GetContext(ctx, &allowed, query, email); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to check allowed email")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check allowed email")
	}

	return allowed, nil
}
