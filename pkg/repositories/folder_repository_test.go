package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/repositories"
)

func TestFolderRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewFolderRepository(getTestDB(t), getTestLogger())
	userID := "user-" + uuid.NewString()
	ctx := getTestContext(userID)

	folder, err := repo.Create(ctx, &models.Folder{Name: "Reach Schools", Color: strPtr("#ff0000")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, folder.ID)
	assert.Equal(t, 0, folder.Position)
	t.Cleanup(func() {
		_ = repo.Delete(ctx, folder.ID)
	})

	second, err := repo.Create(ctx, &models.Folder{Name: "Safety Schools"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)
	t.Cleanup(func() {
		_ = repo.Delete(ctx, second.ID)
	})

	// Duplicate name for the same user is rejected.
	_, err = repo.Create(ctx, &models.Folder{Name: "Reach Schools"})
	assertConflict(t, err)

	folders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Reach Schools", folders[0].Name)
	assert.Equal(t, "Safety Schools", folders[1].Name)

	folder.Name = "Dream Schools"
	_, err = repo.Update(ctx, folder)
	require.NoError(t, err)

	fetched, err := repo.Get(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dream Schools", fetched.Name)

	// Folders are invisible to other users.
	otherCtx := getTestContext("user-" + uuid.NewString())
	_, err = repo.Get(otherCtx, folder.ID)
	assertNotFound(t, err)

	err = repo.Delete(ctx, folder.ID)
	require.NoError(t, err)

	_, err = repo.Get(ctx, folder.ID)
	assertNotFound(t, err)
}

func TestFolderRepository_Limit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewFolderRepository(getTestDB(t), getTestLogger())
	ctx := getTestContext("user-" + uuid.NewString())

	for i := 0; i < models.MaxFoldersPerUser; i++ {
		folder, err := repo.Create(ctx, &models.Folder{Name: fmt.Sprintf("Folder %d", i)})
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = repo.Delete(ctx, folder.ID)
		})
	}

	_, err := repo.Create(ctx, &models.Folder{Name: "One Too Many"})
	assertBadRequest(t, err)
}

func TestFolderRepository_Items(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	collegeRepo := repositories.NewCollegeRepository(db, logger, 0)
	repo := repositories.NewFolderRepository(db, logger)

	collegeID := "test-" + uuid.NewString()
	seedCollege(t, collegeRepo, collegeID, nil)

	ctx := getTestContext("user-" + uuid.NewString())
	folder, err := repo.Create(ctx, &models.Folder{Name: "Visited"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Delete(ctx, folder.ID)
	})

	err = repo.AddItem(ctx, folder.ID, collegeID)
	require.NoError(t, err)

	// The same college cannot be filed twice in one folder.
	err = repo.AddItem(ctx, folder.ID, collegeID)
	assertConflict(t, err)

	err = repo.AddItem(ctx, folder.ID, "test-missing-"+uuid.NewString())
	assertNotFound(t, err)

	colleges, err := repo.ListItems(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, colleges, 1)
	assert.Equal(t, collegeID, colleges[0].ID)

	items, err := repo.ListAllItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, folder.ID, items[0].FolderID)
	assert.Equal(t, collegeID, items[0].CollegeID)

	// Items in someone else's folder are unreachable.
	otherCtx := getTestContext("user-" + uuid.NewString())
	err = repo.AddItem(otherCtx, folder.ID, collegeID)
	assertNotFound(t, err)

	err = repo.RemoveItem(ctx, folder.ID, collegeID)
	require.NoError(t, err)

	err = repo.RemoveItem(ctx, folder.ID, collegeID)
	assertNotFound(t, err)
}

func TestFolderRepository_AuthRequired(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewFolderRepository(getTestDB(t), getTestLogger())

	_, err := repo.List(context.Background())
	assertUnauthorized(t, err)

	_, err = repo.Create(context.Background(), &models.Folder{Name: "Nope"})
	assertUnauthorized(t, err)
}
