package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/search"
	"github.com/PennQuinnDad/college-quest/pkg/tracing"
)

const collegesTable = "colleges"

var collegeStruct = database.NewStruct(new(models.College))

// DefaultMaxRowsPerQuery caps a single Postgres round trip. Listing
// requests above it are assembled from chained sub-queries.
const DefaultMaxRowsPerQuery = 1000

// CollegeRepository handles college persistence and the filtered
// listing query.
type CollegeRepository struct {
	*Repository
	maxRowsPerQuery int
}

// NewCollegeRepository creates a new college repository. maxRowsPerQuery
// falls back to the default when non-positive.
func NewCollegeRepository(db database.DB, logger ectologger.Logger, maxRowsPerQuery int) *CollegeRepository {
	if maxRowsPerQuery < 1 {
		maxRowsPerQuery = DefaultMaxRowsPerQuery
	}
	return &CollegeRepository{
		Repository:      NewRepository(db, logger),
		maxRowsPerQuery: maxRowsPerQuery,
	}
}

// Search runs the filtered listing. Program category filters resolve to
// college ids through the schools table first; the remaining filters
// compile into a single WHERE clause shared by the count and row
// queries. Requested pages larger than the per-query cap are fetched in
// capped chunks.
func (r *CollegeRepository) Search(ctx context.Context, p search.Params) (*models.CollegeSearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.Search")
	defer span.End()

	programFilter := len(p.ProgramCategories) > 0
	var programCollegeIDs []string
	if programFilter {
		ids, err := r.collegeIDsForCategories(ctx, p.ProgramCategories)
		if err != nil {
			return nil, err
		}
		programCollegeIDs = ids
	}

	total, err := r.countMatches(ctx, p, programCollegeIDs, programFilter)
	if err != nil {
		return nil, err
	}

	var colleges []models.College
	if p.RelevanceSort() {
		colleges, err = r.fetchRelevancePage(ctx, p, programCollegeIDs, programFilter, total)
	} else {
		colleges, err = r.fetchPage(ctx, p, programCollegeIDs, programFilter)
	}
	if err != nil {
		return nil, err
	}

	if colleges == nil {
		colleges = []models.College{}
	}
	return &models.CollegeSearchResult{Colleges: colleges, Total: total}, nil
}

func (r *CollegeRepository) countMatches(ctx context.Context, p search.Params, programCollegeIDs []string, programFilter bool) (int, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(collegesTable)
	search.ApplyFilters(sb, p, programCollegeIDs, programFilter)

	query, args := sb.Build()
	var total int
	if err := r.DB().GetContext(ctx, &total, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count colleges")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search colleges")
	}
	return total, nil
}

// fetchPage retrieves p.Limit rows starting at p.Offset, splitting the
// request into capped chunks. A short chunk means the matching rows ran
// out, so later chunks are skipped.
func (r *CollegeRepository) fetchPage(ctx context.Context, p search.Params, programCollegeIDs []string, programFilter bool) ([]models.College, error) {
	return r.fetchChunked(ctx, p, programCollegeIDs, programFilter, p.Offset(), p.Limit)
}

func (r *CollegeRepository) fetchChunked(ctx context.Context, p search.Params, programCollegeIDs []string, programFilter bool, offset, limit int) ([]models.College, error) {
	colleges := make([]models.College, 0, min(limit, r.maxRowsPerQuery))
	for fetched := 0; fetched < limit; {
		chunkSize := min(limit-fetched, r.maxRowsPerQuery)

		sb := collegeStruct.SelectFrom(collegesTable)
		search.ApplyFilters(sb.SelectBuilder, p, programCollegeIDs, programFilter)
		search.ApplySort(sb.SelectBuilder, p)
		sb.Limit(chunkSize).Offset(offset + fetched)

		query, args := sb.Build()
		var chunk []models.College
		if err := r.DB().SelectContext(ctx, &chunk, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("failed to fetch colleges")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search colleges")
		}

		colleges = append(colleges, chunk...)
		fetched += len(chunk)
		if len(chunk) < chunkSize {
			break
		}
	}
	return colleges, nil
}

// fetchRelevancePage pulls every matching row, partitions favorited
// colleges ahead of the rest preserving sort order within each
// partition, then slices the requested page in memory.
func (r *CollegeRepository) fetchRelevancePage(ctx context.Context, p search.Params, programCollegeIDs []string, programFilter bool, total int) ([]models.College, error) {
	all, err := r.fetchChunked(ctx, p, programCollegeIDs, programFilter, 0, total)
	if err != nil {
		return nil, err
	}

	favorites := make(map[string]struct{}, len(p.FavoriteIDs))
	for _, id := range p.FavoriteIDs {
		favorites[id] = struct{}{}
	}

	ordered := make([]models.College, 0, len(all))
	var rest []models.College
	for _, college := range all {
		if _, ok := favorites[college.ID]; ok {
			ordered = append(ordered, college)
		} else {
			rest = append(rest, college)
		}
	}
	ordered = append(ordered, rest...)

	start := p.Offset()
	if start >= len(ordered) {
		return []models.College{}, nil
	}
	end := min(start+p.Limit, len(ordered))
	return ordered[start:end], nil
}

// collegeIDsForCategories resolves program categories to the distinct
// college ids offering a school in any of them.
func (r *CollegeRepository) collegeIDsForCategories(ctx context.Context, categories []string) ([]string, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("DISTINCT college_id")
	sb.From(schoolsTable)
	sb.Where(sb.In("category", sqlbuilder.Flatten(categories)...))

	query, args := sb.Build()
	var ids []string
	if err := r.DB().SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to resolve program categories")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search colleges")
	}
	return ids, nil
}

// GetByID retrieves a single college
func (r *CollegeRepository) GetByID(ctx context.Context, id string) (*models.College, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.GetByID")
	defer span.End()

	sb := collegeStruct.SelectFrom(collegesTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var college models.College
	err := r.DB().GetContext(ctx, &college, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("college %s not found", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": id}).Error("failed to get college")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get college")
	}

	return &college, nil
}

// Candidates retrieves the similarity candidate pool, excluding the
// target. Ordering by id keeps tie-breaks reproducible across calls.
func (r *CollegeRepository) Candidates(ctx context.Context, excludeID string, poolSize int) ([]models.College, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.Candidates")
	defer span.End()

	sb := collegeStruct.SelectFrom(collegesTable)
	sb.Where(sb.NotEqual("id", excludeID))
	sb.OrderBy("id")
	sb.Limit(poolSize)

	query, args := sb.Build()
	var colleges []models.College
	if err := r.DB().SelectContext(ctx, &colleges, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to fetch similarity candidates")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to fetch similar colleges")
	}

	return colleges, nil
}

// Autocomplete returns name suggestions for a prefix or substring.
func (r *CollegeRepository) Autocomplete(ctx context.Context, query string, limit int) ([]models.CollegeSuggestion, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.Autocomplete")
	defer span.End()

	if limit < 1 || limit > 50 {
		limit = 10
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name")
	sb.From(collegesTable)
	sb.Where(sb.ILike("name", "%"+query+"%"))
	sb.OrderBy("name ASC", "id ASC")
	sb.Limit(limit)

	stmt, args := sb.Build()
	var suggestions []models.CollegeSuggestion
	if err := r.DB().SelectContext(ctx, &suggestions, stmt, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to autocomplete colleges")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to autocomplete colleges")
	}

	return suggestions, nil
}

// DistinctValues lists the distinct non-null values of a filterable
// column, for populating filter dropdowns.
func (r *CollegeRepository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.DistinctValues")
	defer span.End()

	switch column {
	case "state", "region", "type", "size":
	default:
		return nil, BadRequest("unknown filter column")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("DISTINCT " + column)
	sb.From(collegesTable)
	sb.Where(sb.IsNotNull(column))
	sb.OrderBy(column + " ASC")

	query, args := sb.Build()
	var values []string
	if err := r.DB().SelectContext(ctx, &values, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"column": column}).Error("failed to list distinct values")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list filter values")
	}

	return values, nil
}

// Create inserts a new college
func (r *CollegeRepository) Create(ctx context.Context, college *models.College) (*models.College, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.Create")
	defer span.End()

	now := time.Now().UTC()
	college.CreatedAt = now
	college.UpdatedAt = now
	if college.Programs == nil {
		college.Programs = pq.StringArray{}
	}

	sb := collegeStruct.InsertInto(collegesTable, college)
	query, args := sb.Build()
	if _, err := r.DB().ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "college %s already exists", college.ID)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": college.ID}).Error("failed to create college")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create college")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"college_id": college.ID}).Info("created college")
	return college, nil
}

// Update replaces a college row
func (r *CollegeRepository) Update(ctx context.Context, college *models.College) (*models.College, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.Update")
	defer span.End()

	college.UpdatedAt = time.Now().UTC()

	ub := collegeStruct.Update(collegesTable, college)
	ub.Where(ub.Equal("id", college.ID))

	query, args := ub.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": college.ID}).Error("failed to update college")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update college")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, NotFound("college %s not found", college.ID)
	}

	return college, nil
}

// Delete removes a college
func (r *CollegeRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(collegesTable).Where(db.Equal("id", id))

	query, args := db.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": id}).Error("failed to delete college")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete college")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NotFound("college %s not found", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"college_id": id}).Info("deleted college")
	return nil
}

// DeleteMany removes a batch of colleges and reports how many rows
// went away. Unknown ids are skipped silently.
func (r *CollegeRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.DeleteMany")
	defer span.End()

	if len(ids) == 0 {
		return 0, BadRequest("ids are required")
	}

	db := database.NewDeleteBuilder()
	db.DeleteFrom(collegesTable).Where(db.In("id", sqlbuilder.Flatten(ids)...))

	query, args := db.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"count": len(ids)}).Error("failed to delete colleges")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete colleges")
	}

	rows, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{"deleted": rows}).Info("deleted colleges")
	return rows, nil
}

// ListMissingCoordinates pages through colleges still waiting on a
// geocode, ordered by id for stable resumption.
func (r *CollegeRepository) ListMissingCoordinates(ctx context.Context, afterID string, limit int) ([]models.College, error) {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.ListMissingCoordinates")
	defer span.End()

	if limit < 1 || limit > r.maxRowsPerQuery {
		limit = r.maxRowsPerQuery
	}

	sb := collegeStruct.SelectFrom(collegesTable)
	sb.Where(
		sb.Or(sb.IsNull("latitude"), sb.IsNull("longitude")),
		sb.IsNotNull("scorecard_id"),
	)
	if afterID != "" {
		sb.Where(sb.GreaterThan("id", afterID))
	}
	sb.OrderBy("id")
	sb.Limit(limit)

	query, args := sb.Build()
	var colleges []models.College
	if err := r.DB().SelectContext(ctx, &colleges, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list colleges missing coordinates")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list colleges")
	}

	return colleges, nil
}

// SetCoordinates backfills latitude and longitude. Rows that already
// have both values are left untouched.
func (r *CollegeRepository) SetCoordinates(ctx context.Context, id string, latitude, longitude float64) error {
	ctx, span := tracing.StartSpan(ctx, "CollegeRepository.SetCoordinates")
	defer span.End()

	query := `
		UPDATE colleges
		SET latitude = $1, longitude = $2, updated_at = $3
		WHERE id = $4
		AND (latitude IS NULL OR longitude IS NULL)
	`

	if _, err := r.DB().ExecContext(ctx, query, latitude, longitude, time.Now().UTC(), id); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"college_id": id}).Error("failed to set college coordinates")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to set college coordinates")
	}

	return nil
}
