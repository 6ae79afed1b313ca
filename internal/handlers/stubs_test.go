package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/search"
)

func newTestContext(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, target, reqBody)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.True(t, httperror.IsHTTPError(err))
	assert.Equal(t, status, httperror.GetStatusCode(err))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type stubCollegeRepo struct {
	searchFn       func(ctx context.Context, p search.Params) (*models.CollegeSearchResult, error)
	getFn          func(ctx context.Context, id string) (*models.College, error)
	candidatesFn   func(ctx context.Context, excludeID string, poolSize int) ([]models.College, error)
	autocompleteFn func(ctx context.Context, query string, limit int) ([]models.CollegeSuggestion, error)
	distinctFn     func(ctx context.Context, column string) ([]string, error)
	createFn       func(ctx context.Context, college *models.College) (*models.College, error)
	updateFn       func(ctx context.Context, college *models.College) (*models.College, error)
	deleteFn       func(ctx context.Context, id string) error
	deleteManyFn   func(ctx context.Context, ids []string) (int64, error)
}

func (s *stubCollegeRepo) Search(ctx context.Context, p search.Params) (*models.CollegeSearchResult, error) {
	return s.searchFn(ctx, p)
}

func (s *stubCollegeRepo) GetByID(ctx context.Context, id string) (*models.College, error) {
	return s.getFn(ctx, id)
}

func (s *stubCollegeRepo) Candidates(ctx context.Context, excludeID string, poolSize int) ([]models.College, error) {
	return s.candidatesFn(ctx, excludeID, poolSize)
}

func (s *stubCollegeRepo) Autocomplete(ctx context.Context, query string, limit int) ([]models.CollegeSuggestion, error) {
	return s.autocompleteFn(ctx, query, limit)
}

func (s *stubCollegeRepo) DistinctValues(ctx context.Context, column string) ([]string, error) {
	return s.distinctFn(ctx, column)
}

func (s *stubCollegeRepo) Create(ctx context.Context, college *models.College) (*models.College, error) {
	return s.createFn(ctx, college)
}

func (s *stubCollegeRepo) Update(ctx context.Context, college *models.College) (*models.College, error) {
	return s.updateFn(ctx, college)
}

func (s *stubCollegeRepo) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubCollegeRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	return s.deleteManyFn(ctx, ids)
}

func (s *stubCollegeRepo) ListMissingCoordinates(ctx context.Context, afterID string, limit int) ([]models.College, error) {
	return nil, nil
}

func (s *stubCollegeRepo) SetCoordinates(ctx context.Context, id string, latitude, longitude float64) error {
	return nil
}

type stubSchoolRepo struct {
	listFn          func(ctx context.Context, collegeIDs []string) ([]models.School, error)
	listByCollegeFn func(ctx context.Context, collegeID string) ([]models.School, error)
	getFn           func(ctx context.Context, id uuid.UUID) (*models.School, error)
	categoriesFn    func(ctx context.Context) ([]string, error)
	createFn        func(ctx context.Context, school *models.School) (*models.School, error)
	updateFn        func(ctx context.Context, school *models.School) (*models.School, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
}

func (s *stubSchoolRepo) List(ctx context.Context, collegeIDs []string) ([]models.School, error) {
	return s.listFn(ctx, collegeIDs)
}

func (s *stubSchoolRepo) ListByCollegeID(ctx context.Context, collegeID string) ([]models.School, error) {
	return s.listByCollegeFn(ctx, collegeID)
}

func (s *stubSchoolRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	return s.getFn(ctx, id)
}

func (s *stubSchoolRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	return s.categoriesFn(ctx)
}

func (s *stubSchoolRepo) Create(ctx context.Context, school *models.School) (*models.School, error) {
	return s.createFn(ctx, school)
}

func (s *stubSchoolRepo) Update(ctx context.Context, school *models.School) (*models.School, error) {
	return s.updateFn(ctx, school)
}

func (s *stubSchoolRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type stubFavoriteRepo struct {
	listFn     func(ctx context.Context) ([]models.College, error)
	listIDsFn  func(ctx context.Context) ([]string, error)
	addFn      func(ctx context.Context, collegeID string) error
	removeFn   func(ctx context.Context, collegeID string) error
	isFavorite func(ctx context.Context, collegeID string) (bool, error)
}

func (s *stubFavoriteRepo) List(ctx context.Context) ([]models.College, error) {
	return s.listFn(ctx)
}

func (s *stubFavoriteRepo) ListIDs(ctx context.Context) ([]string, error) {
	return s.listIDsFn(ctx)
}

func (s *stubFavoriteRepo) Add(ctx context.Context, collegeID string) error {
	return s.addFn(ctx, collegeID)
}

func (s *stubFavoriteRepo) Remove(ctx context.Context, collegeID string) error {
	return s.removeFn(ctx, collegeID)
}

func (s *stubFavoriteRepo) IsFavorite(ctx context.Context, collegeID string) (bool, error) {
	return s.isFavorite(ctx, collegeID)
}

type stubFolderRepo struct {
	listFn         func(ctx context.Context) ([]models.Folder, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*models.Folder, error)
	createFn       func(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	updateFn       func(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	addItemFn      func(ctx context.Context, folderID uuid.UUID, collegeID string) error
	removeItemFn   func(ctx context.Context, folderID uuid.UUID, collegeID string) error
	listItemsFn    func(ctx context.Context, folderID uuid.UUID) ([]models.College, error)
	listAllItemsFn func(ctx context.Context) ([]models.FolderItem, error)
}

func (s *stubFolderRepo) List(ctx context.Context) ([]models.Folder, error) {
	return s.listFn(ctx)
}

func (s *stubFolderRepo) Get(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	return s.getFn(ctx, id)
}

func (s *stubFolderRepo) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	return s.createFn(ctx, folder)
}

func (s *stubFolderRepo) Update(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	return s.updateFn(ctx, folder)
}

func (s *stubFolderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubFolderRepo) AddItem(ctx context.Context, folderID uuid.UUID, collegeID string) error {
	return s.addItemFn(ctx, folderID, collegeID)
}

func (s *stubFolderRepo) RemoveItem(ctx context.Context, folderID uuid.UUID, collegeID string) error {
	return s.removeItemFn(ctx, folderID, collegeID)
}

func (s *stubFolderRepo) ListItems(ctx context.Context, folderID uuid.UUID) ([]models.College, error) {
	return s.listItemsFn(ctx, folderID)
}

func (s *stubFolderRepo) ListAllItems(ctx context.Context) ([]models.FolderItem, error) {
	return s.listAllItemsFn(ctx)
}

type stubAllowedEmailRepo struct {
	listFn      func(ctx context.Context) ([]models.AllowedEmail, error)
	addFn       func(ctx context.Context, email string) (*models.AllowedEmail, error)
	removeFn    func(ctx context.Context, id uuid.UUID) error
	isAllowedFn func(ctx context.Context, email string) (bool, error)
}

func (s *stubAllowedEmailRepo) List(ctx context.Context) ([]models.AllowedEmail, error) {
	return s.listFn(ctx)
}

func (s *stubAllowedEmailRepo) Add(ctx context.Context, email string) (*models.AllowedEmail, error) {
	return s.addFn(ctx, email)
}

func (s *stubAllowedEmailRepo) Remove(ctx context.Context, id uuid.UUID) error {
	return s.removeFn(ctx, id)
}

func (s *stubAllowedEmailRepo) IsAllowed(ctx context.Context, email string) (bool, error) {
	return s.isAllowedFn(ctx, email)
}

type stubProfileRepo struct {
	upsertFn func(ctx context.Context, profile *models.Profile) error
	getFn    func(ctx context.Context, id string) (*models.Profile, error)
}

func (s *stubProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	return s.upsertFn(ctx, profile)
}

func (s *stubProfileRepo) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.getFn(ctx, id)
}
