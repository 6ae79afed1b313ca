package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PennQuinnDad/college-quest/pkg/repositories"
)

func TestFavoriteRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	collegeRepo := repositories.NewCollegeRepository(db, logger, 0)
	repo := repositories.NewFavoriteRepository(db, logger)

	collegeID := "test-" + uuid.NewString()
	seedCollege(t, collegeRepo, collegeID, nil)

	userID := "user-" + uuid.NewString()
	ctx := getTestContext(userID)

	favorites, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	err = repo.Add(ctx, collegeID)
	require.NoError(t, err)

	// Second add is idempotent, not an error.
	err = repo.Add(ctx, collegeID)
	require.NoError(t, err)

	favorites, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, collegeID, favorites[0].ID)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{collegeID}, ids)

	isFav, err := repo.IsFavorite(ctx, collegeID)
	require.NoError(t, err)
	assert.True(t, isFav)

	// Another user's list stays empty.
	otherCtx := getTestContext("user-" + uuid.NewString())
	otherFavorites, err := repo.List(otherCtx)
	require.NoError(t, err)
	assert.Empty(t, otherFavorites)

	err = repo.Remove(ctx, collegeID)
	require.NoError(t, err)

	// Removing again is also a success.
	err = repo.Remove(ctx, collegeID)
	require.NoError(t, err)

	isFav, err = repo.IsFavorite(ctx, collegeID)
	require.NoError(t, err)
	assert.False(t, isFav)
}

func TestFavoriteRepository_UnknownCollege(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewFavoriteRepository(getTestDB(t), getTestLogger())
	ctx := getTestContext("user-" + uuid.NewString())

	err := repo.Add(ctx, "test-missing-"+uuid.NewString())
	assertNotFound(t, err)
}

func TestFavoriteRepository_AuthRequired(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewFavoriteRepository(getTestDB(t), getTestLogger())

	_, err := repo.List(context.Background())
	assertUnauthorized(t, err)

	err = repo.Add(context.Background(), "test-college")
	assertUnauthorized(t, err)
}
