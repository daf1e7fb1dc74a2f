package types

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/packline/catalog/models"
)

type MockTypeRepo struct {
	Types       []models.Type
	Err         error
	DeletedKeys []string

	lastCategoryID *int64
	listCalls      int
	lastInput      *models.TypeInput
	lastID         uint
}

func (m *MockTypeRepo) GetTypes(categoryID *int64) ([]models.Type, error) {
	m.listCalls++
	m.lastCategoryID = categoryID
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Type
	for _, t := range m.Types {
		if categoryID == nil || int64(t.CategoryID) == *categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTypeRepo) GetByID(id uint) (*models.Type, error) {
	m.lastID = id
	for _, t := range m.Types {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MockTypeRepo) CreateType(in models.TypeInput) (*models.Type, error) {
	m.lastInput = &in
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.Type{
		ID:         11,
		TypeName:   in.TypeName.Value,
		CategoryID: in.CategoryID.Value,
		Category:   models.Category{ID: in.CategoryID.Value, CategoryName: "Canisters"},
	}, nil
}

func (m *MockTypeRepo) UpdateType(id uint, in models.TypeInput) (*models.Type, error) {
	m.lastID = id
	m.lastInput = &in
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.Type{ID: id, TypeName: in.TypeName.Value}, nil
}

func (m *MockTypeRepo) DeleteType(id uint) ([]string, error) {
	m.lastID = id
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DeletedKeys, nil
}

type MockStore struct {
	Deleted []string
}

func (m *MockStore) Delete(_ context.Context, key string) error {
	m.Deleted = append(m.Deleted, key)
	return nil
}

func TestHandleGetAll(t *testing.T) {
	allTypes := []models.Type{
		{ID: 1, TypeName: "Plastic", CategoryID: 1, Category: models.Category{ID: 1, CategoryName: "Canisters"}},
		{ID: 2, TypeName: "Metal", CategoryID: 1, Category: models.Category{ID: 1, CategoryName: "Canisters"}},
		{ID: 3, TypeName: "Glass", CategoryID: 2, Category: models.Category{ID: 2, CategoryName: "Jars"}},
	}

	testCases := []struct {
		name               string
		url                string
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockTypeRepo)
	}{
		{
			name:               "All types",
			url:                "/types/",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 3, resp.Count)
				assert.Equal(t, "All", resp.CategoryID)
				assert.Equal(t, "Jars", resp.Results[2].Category.CategoryName)
			},
			checkRepoCall: func(t *testing.T, repo *MockTypeRepo) {
				assert.Nil(t, repo.lastCategoryID)
			},
		},
		{
			name:               "Filtered by category",
			url:                "/types/?category=1",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 2, resp.Count)
				assert.Equal(t, "1", resp.CategoryID)
			},
		},
		{
			name:               "Invalid category id",
			url:                "/types/?category=plastic",
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp map[string]any
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Invalid category ID", resp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockTypeRepo) {
				assert.Zero(t, repo.listCalls)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockTypeRepo{Types: allTypes}
			handler := NewTypeHandler(repo, &MockStore{}, zap.NewNop())
			req := httptest.NewRequest("GET", tc.url, nil)
			rec := httptest.NewRecorder()

			handler.HandleGetAll(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, repo)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	repo := &MockTypeRepo{}
	handler := NewTypeHandler(repo, &MockStore{}, zap.NewNop())

	req := httptest.NewRequest("POST", "/types/", strings.NewReader(`{"type_name":"Plastic","category_id":1}`))
	rec := httptest.NewRecorder()

	handler.HandleCreate(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.Some[uint](1), repo.lastInput.CategoryID)
	assert.JSONEq(t, `"Canisters"`, mustField(t, rec, "category", "category_name"))
}

func TestHandleGetAndDelete(t *testing.T) {
	repo := &MockTypeRepo{
		Types:       []models.Type{{ID: 4, TypeName: "Plastic"}},
		DeletedKeys: []string{"images/x.png"},
	}
	store := &MockStore{}
	handler := NewTypeHandler(repo, store, zap.NewNop())

	req := httptest.NewRequest("GET", "/types/4/", nil)
	req.SetPathValue("id", "4")
	rec := httptest.NewRecorder()
	handler.HandleGet(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/types/5/", nil)
	req.SetPathValue("id", "5")
	rec = httptest.NewRecorder()
	handler.HandleGet(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Type not found"}`, rec.Body.String())

	req = httptest.NewRequest("DELETE", "/types/4/", nil)
	req.SetPathValue("id", "4")
	rec = httptest.NewRecorder()
	handler.HandleDelete(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"images/x.png"}, store.Deleted)
}

// mustField returns the raw JSON of a nested field of the response body.
func mustField(t *testing.T, rec *httptest.ResponseRecorder, path ...string) string {
	t.Helper()
	var cur json.RawMessage = rec.Body.Bytes()
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			t.Fatalf("decode %s: %v", key, err)
		}
		cur = obj[key]
	}
	return string(cur)
}
