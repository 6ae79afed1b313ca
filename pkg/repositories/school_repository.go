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
	"github.com/huandu/go-sqlbuilder"

	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

const schoolsTable = "schools"

var schoolStruct = database.NewStruct(new(models.School))

// SchoolRepository handles academic program persistence
type SchoolRepository struct {
	*Repository
	maxRowsPerQuery int
}

// NewSchoolRepository creates a new school repository
func NewSchoolRepository(db database.DB, logger ectologger.Logger, maxRowsPerQuery int) *SchoolRepository {
	if maxRowsPerQuery < 1 {
		maxRowsPerQuery = DefaultMaxRowsPerQuery
	}
	return &SchoolRepository{Repository: NewRepository(db, logger), maxRowsPerQuery: maxRowsPerQuery}
}

// List retrieves program rows, optionally restricted to a set of
// colleges.
func (r *SchoolRepository) List(ctx context.Context, collegeIDs []string) ([]models.School, error) {
	ctx, span := tracing.StartSpan(ctx, "SchoolRepository.List")
	defer span.End()

	sb := schoolStruct.SelectFrom(schoolsTable)
	if len(collegeIDs) > 0 {
		sb.Where(sb.In("college_id", sqlbuilder.Flatten(collegeIDs)...))
	}
	sb.OrderBy("college_id ASC", "name ASC")

	query, args := sb.Build()
	var schools []models.School
	if err := r.DB().SelectContext(ctx, &schools, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list schools")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list schools")
	}

	if schools == nil {
		schools = []models.School{}
	}
	return schools, nil
}

// ListByCollegeID retrieves every program a college offers.
func (r *SchoolRepository) ListByCollegeID(ctx context.Context, collegeID string) ([]models.School, error) {
	ctx, span := tracing.StartSpan(ctx, "SchoolRepository.ListByCollegeID")
	defer span.End()

	sb := schoolStruct.SelectFrom(schoolsTable)
	sb.Where(sb.Equal("college_id", collegeID))
	sb.OrderBy("name ASC")

	query, args := sb.Build()
	var schools []models.School
	if err := r.DB().SelectContext(ctx, &schools, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": collegeID}).Error("failed to list schools")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list schools")
	}

	return schools, nil
}

// GetByID retrieves a single program
func (r *SchoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	ctx, span := tracing.StartSpan(ctx, "SchoolRepository.GetByID")
	defer span.End()

	sb := schoolStruct.SelectFrom(schoolsTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var school models.School
	err := r.DB().GetContext(ctx, &school, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("school %s not found", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"school_id": id}).Error("failed to get school")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get school")
	}

	return &school, nil
}

// DistinctCategories lists the program categories in use, for the
// filter dropdown. The scan respects the per-query row cap, so it
// assembles the full set from sequential chunks.
func (r *SchoolRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "SchoolRepository.DistinctCategories")
	defer span.End()

	var categories []string
	for offset := 0; ; offset += r.maxRowsPerQuery {
		sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
		sb.Select("DISTINCT category")
		sb.From(schoolsTable)
		sb.Where(sb.IsNotNull("category"))
		sb.OrderBy("category ASC")
		sb.Limit(r.maxRowsPerQuery).Offset(offset)

		query, args := sb.Build()
		var chunk []string
		if err := r.DB().SelectContext(ctx, &chunk, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("failed to list school categories")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list school categories")
		}

		categories = append(categories, chunk...)
		if len(chunk) < r.maxRowsPerQuery {
			break
		}
	}

	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Create inserts a new program
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) (*models.School, error) {
	ctx, span := tracing.StartSpan(ctx, "SchoolRepository.Create")
	defer span.End()

	if school.ID == uuid.Nil {
		school.ID = uuid.New()
	}
	now := time.Now().UTC()
	school.CreatedAt = now
	school.UpdatedAt = now

	sb := schoolStruct.InsertInto(schoolsTable, school)
	query, args := sb.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"school_id": school.ID, "college_id": school.CollegeID}).Error("failed to create school")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create school")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"school_id": school.ID, "college_id": school.CollegeID}).Info("created school")
	return school, nil
}

// Update replaces a program row
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) (*models.School, error) {
	ctx, span := tracing.StartSpan(ctx, "SchoolRepository.Update")
	defer span.End()

	school.UpdatedAt = time.Now().UTC()

	ub := schoolStruct.Update(schoolsTable, school)
	ub.Where(ub.Equal("id", school.ID))

	query, args := ub.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"school_id": school.ID}).Error("failed to update school")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update school")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, NotFound("school %s not found", school.ID)
	}

	return school, nil
}

// Delete removes a program
func (r *SchoolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "SchoolRepository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(schoolsTable).Where(db.Equal("id", id))

	query, args := db.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"school_id": id}).Error("failed to delete school")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete school")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NotFound("school %s not found", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"school_id": id}).Info("deleted school")
	return nil
}
