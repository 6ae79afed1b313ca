package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/search"
)

// CollegeRepo defines the interface for college repository operations
type CollegeRepo interface {
	Search(ctx context.Context, p search.Params) (*models.CollegeSearchResult, error)
	GetByID(ctx context.Context, id string) (*models.College, error)
	Candidates(ctx context.Context, excludeID string, poolSize int) ([]models.College, error)
	Autocomplete(ctx context.Context, query string, limit int) ([]models.CollegeSuggestion, error)
	DistinctValues(ctx context.Context, column string) ([]string, error)
	Create(ctx context.Context, college *models.College) (*models.College, error)
	Update(ctx context.Context, college *models.College) (*models.College, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	ListMissingCoordinates(ctx context.Context, afterID string, limit int) ([]models.College, error)
	SetCoordinates(ctx context.Context, id string, latitude, longitude float64) error
}

// SchoolRepo defines the interface for school repository operations
type SchoolRepo interface {
	List(ctx context.Context, collegeIDs []string) ([]models.School, error)
	ListByCollegeID(ctx context.Context, collegeID string) ([]models.School, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.School, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, school *models.School) (*models.School, error)
	Update(ctx context.Context, school *models.School) (*models.School, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FavoriteRepo defines the interface for favorite repository operations
type FavoriteRepo interface {
	List(ctx context.Context) ([]models.College, error)
	ListIDs(ctx context.Context) ([]string, error)
	Add(ctx context.Context, collegeID string) error
	Remove(ctx context.Context, collegeID string) error
	IsFavorite(ctx context.Context, collegeID string) (bool, error)
}

// FolderRepo defines the interface for folder repository operations
type FolderRepo interface {
	List(ctx context.Context) ([]models.Folder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Folder, error)
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	Update(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, folderID uuid.UUID, collegeID string) error
	RemoveItem(ctx context.Context, folderID uuid.UUID, collegeID string) error
	ListItems(ctx context.Context, folderID uuid.UUID) ([]models.College, error)
	ListAllItems(ctx context.Context) ([]models.FolderItem, error)
}

// AllowedEmailRepo defines the interface for allow list operations
type AllowedEmailRepo interface {
	List(ctx context.Context) ([]models.AllowedEmail, error)
	Add(ctx context.Context, email string) (*models.AllowedEmail, error)
	Remove(ctx context.Context, id uuid.UUID) error
	IsAllowed(ctx context.Context, email string) (bool, error)
}

// ProfileRepo defines the interface for profile operations
type ProfileRepo interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	Get(ctx context.Context, id string) (*models.Profile, error)
}
