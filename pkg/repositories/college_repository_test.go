package repositories_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/repositories"
	"github.com/PennQuinnDad/college-quest/pkg/search"
)

func seedCollege(t *testing.T, repo *repositories.CollegeRepository, id string, mutate func(*models.College)) *models.College {
	t.Helper()

	college := &models.College{
		ID:             id,
		Name:           "College " + id,
		City:           "Boston",
		State:          "MA",
		Region:         strPtr("Northeast"),
		Type:           strPtr("Private"),
		Size:           strPtr("Medium"),
		Enrollment:     intPtr(3000),
		TuitionInState: intPtr(40000),
		AcceptanceRate: floatPtr(20),
		Programs:       []string{"CS", "Biology"},
	}
	if mutate != nil {
		mutate(college)
	}

	created, err := repo.Create(context.Background(), college)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), id)
	})
	return created
}

func TestCollegeRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewCollegeRepository(getTestDB(t), getTestLogger(), 0)
	ctx := context.Background()
	id := "test-" + uuid.NewString()

	seedCollege(t, repo, id, nil)

	fetched, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "College "+id, fetched.Name)
	assert.Equal(t, "MA", fetched.State)

	fetched.Name = "Renamed College"
	_, err = repo.Update(ctx, fetched)
	require.NoError(t, err)

	updated, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed College", updated.Name)

	err = repo.Delete(ctx, id)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, id)
	assertNotFound(t, err)

	err = repo.Delete(ctx, id)
	assertNotFound(t, err)
}

func TestCollegeRepository_Search(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewCollegeRepository(getTestDB(t), getTestLogger(), 0)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("test-%s-%d", marker, i)
		tuition := 30000 + i*1000
		seedCollege(t, repo, id, func(c *models.College) {
			c.Name = fmt.Sprintf("Search College %s %d", marker, i)
			c.TuitionInState = &tuition
		})
	}

	values := url.Values{}
	values.Set("query", marker)
	values.Set("states", "MA")
	values.Set("sortBy", "tuition")
	values.Set("sortOrder", "desc")
	values.Set("limit", "2")
	params, err := search.Parse(values)
	require.NoError(t, err)

	page1, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 5, page1.Total)
	require.Len(t, page1.Colleges, 2)
	assert.Equal(t, 34000, *page1.Colleges[0].TuitionInState)
	assert.Equal(t, 33000, *page1.Colleges[1].TuitionInState)

	values.Set("page", "3")
	params, err = search.Parse(values)
	require.NoError(t, err)

	page3, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 5, page3.Total)
	require.Len(t, page3.Colleges, 1)
	assert.Equal(t, 30000, *page3.Colleges[0].TuitionInState)
}

func TestCollegeRepository_SearchChunked(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Cap each round trip at 2 rows so a limit of 5 needs 3 sub-fetches.
	repo := repositories.NewCollegeRepository(getTestDB(t), getTestLogger(), 2)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	for i := 0; i < 5; i++ {
		seedCollege(t, repo, fmt.Sprintf("test-%s-%d", marker, i), func(c *models.College) {
			c.Name = fmt.Sprintf("Chunk College %s %d", marker, i)
		})
	}

	values := url.Values{}
	values.Set("query", marker)
	values.Set("limit", "100")
	params, err := search.Parse(values)
	require.NoError(t, err)

	result, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Len(t, result.Colleges, 5)

	// Concatenated chunks keep the sort order without duplicates.
	seen := map[string]bool{}
	for _, college := range result.Colleges {
		assert.False(t, seen[college.ID])
		seen[college.ID] = true
	}
}

func TestCollegeRepository_SearchRelevance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewCollegeRepository(getTestDB(t), getTestLogger(), 0)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("test-%s-%d", marker, i)
		ids = append(ids, id)
		seedCollege(t, repo, id, func(c *models.College) {
			c.Name = fmt.Sprintf("Relevance College %s %d", marker, i)
		})
	}

	values := url.Values{}
	values.Set("query", marker)
	values.Set("sortBy", "relevance")
	values.Set("favoriteIds", ids[2]+","+ids[0])
	params, err := search.Parse(values)
	require.NoError(t, err)

	// favoriteIds restricts the listing to the favorited set.
	result, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Colleges, 2)
	assert.Equal(t, ids[0], result.Colleges[0].ID)
	assert.Equal(t, ids[2], result.Colleges[1].ID)
}

func TestCollegeRepository_SearchProgramCategories(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewCollegeRepository(db, logger, 0)
	schoolRepo := repositories.NewSchoolRepository(db, logger, 0)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	withSchool := fmt.Sprintf("test-%s-a", marker)
	without := fmt.Sprintf("test-%s-b", marker)
	seedCollege(t, repo, withSchool, nil)
	seedCollege(t, repo, without, nil)

	category := "Engineering " + marker
	school, err := schoolRepo.Create(ctx, &models.School{
		Name:      "School of Engineering",
		CollegeID: withSchool,
		Category:  &category,
		Source:    "manual",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = schoolRepo.Delete(context.Background(), school.ID)
	})

	values := url.Values{}
	values.Set("query", marker)
	values.Set("programCategories", category)
	params, err := search.Parse(values)
	require.NoError(t, err)

	result, err := repo.Search(ctx, params)
	require.NoError(t, err)
	require.Len(t, result.Colleges, 1)
	assert.Equal(t, withSchool, result.Colleges[0].ID)

	// Unknown category matches nothing rather than everything.
	values.Set("programCategories", "No Such Category "+marker)
	params, err = search.Parse(values)
	require.NoError(t, err)

	empty, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Colleges)
}

func TestCollegeRepository_Candidates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewCollegeRepository(getTestDB(t), getTestLogger(), 0)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	target := fmt.Sprintf("test-%s-target", marker)
	seedCollege(t, repo, target, nil)
	seedCollege(t, repo, fmt.Sprintf("test-%s-other", marker), nil)

	candidates, err := repo.Candidates(ctx, target, 200)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.NotEqual(t, target, c.ID)
	}
}

func TestCollegeRepository_SetCoordinates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewCollegeRepository(getTestDB(t), getTestLogger(), 0)
	ctx := context.Background()
	id := "test-" + uuid.NewString()

	seedCollege(t, repo, id, nil)

	err := repo.SetCoordinates(ctx, id, 42.35, -71.06)
	require.NoError(t, err)

	college, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, college.Latitude)
	assert.Equal(t, 42.35, *college.Latitude)

	// Existing coordinates are never overwritten.
	err = repo.SetCoordinates(ctx, id, 0, 0)
	require.NoError(t, err)

	college, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 42.35, *college.Latitude)
	assert.Equal(t, -71.06, *college.Longitude)
}
