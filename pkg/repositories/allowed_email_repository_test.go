package repositories_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/repositories"
)

func TestAllowedEmailRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewAllowedEmailRepository(getTestDB(t), getTestLogger())
	ctx := context.Background()

	email := "Test." + uuid.NewString() + "@Example.com"
	entry, err := repo.Add(ctx, email)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Remove(context.Background(), entry.ID)
	})

	// Stored lowercase.
	assert.Equal(t, strings.ToLower(email), entry.Email)

	_, err = repo.Add(ctx, email)
	assertConflict(t, err)

	// Matching ignores case on both sides.
	allowed, err := repo.IsAllowed(ctx, email)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.IsAllowed(ctx, "nobody-"+uuid.NewString()+"@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	emails, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, emails)

	err = repo.Remove(ctx, entry.ID)
	require.NoError(t, err)

	err = repo.Remove(ctx, entry.ID)
	assertNotFound(t, err)
}

func TestProfileRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := repositories.NewProfileRepository(getTestDB(t), getTestLogger())
	ctx := context.Background()

	id := "user-" + uuid.NewString()
	err := repo.Upsert(ctx, &models.Profile{
		ID:          id,
		Email:       "Student@Example.com",
		DisplayName: strPtr("Student"),
	})
	require.NoError(t, err)

	profile, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", profile.Email)
	assert.Equal(t, models.RoleUser, profile.Role)

	// Re-upserting refreshes provider-owned fields, keeps the role.
	err = repo.Upsert(ctx, &models.Profile{
		ID:    id,
		Email: "renamed@example.com",
	})
	require.NoError(t, err)

	profile, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", profile.Email)
	assert.Equal(t, models.RoleUser, profile.Role)

	_, err = repo.Get(ctx, "user-missing-"+uuid.NewString())
	assertNotFound(t, err)
}
