package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
)

// --- Mock Repo ---

type MockProductRepo struct {
	SourceProducts []models.Product
	Err            error
	DeletedKeys    []string

	// Fields to capture call arguments
	lastCalledQuery *models.ProductQuery
	lastCalledID    uint
	lastInput       *models.ProductInput
}

func (m *MockProductRepo) GetFilteredProducts(q models.ProductQuery) ([]models.Product, models.Page, error) {
	m.lastCalledQuery = &q

	if m.Err != nil {
		return nil, models.Page{}, m.Err
	}

	// Simulate the type filter only
	var filtered []models.Product
	for _, p := range m.SourceProducts {
		if q.TypeID != nil && int64(p.TypeID) != *q.TypeID {
			continue
		}
		filtered = append(filtered, p)
	}

	page := models.Paginate(int64(len(filtered)), q.Page, q.PageSize)
	start := min(page.Offset(), len(filtered))
	end := min(start+page.Size, len(filtered))
	return filtered[start:end], page, nil
}

func (m *MockProductRepo) GetByID(id uint) (*models.Product, error) {
	m.lastCalledID = id
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.SourceProducts {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MockProductRepo) CreateProduct(in models.ProductInput) (*models.Product, error) {
	m.lastInput = &in
	if m.Err != nil {
		return nil, m.Err
	}
	p := newTestProduct(42, in.ProductName.Value, in.TypeID.Value)
	return &p, nil
}

func (m *MockProductRepo) UpdateProduct(id uint, in models.ProductInput) (*models.Product, error) {
	m.lastCalledID = id
	m.lastInput = &in
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.SourceProducts {
		if p.ID == id {
			product := p
			if in.Weight.Set {
				product.Weight = in.Weight.Ptr()
			}
			return &product, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MockProductRepo) DeleteProduct(id uint) ([]string, error) {
	m.lastCalledID = id
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

// --- Helpers ---

func testURL(key string) string {
	return "/media/" + key
}

func newTestProduct(id uint, name string, typeID uint) models.Product {
	return models.Product{
		ID:          id,
		ProductName: name,
		TypeID:      typeID,
		InStock:     true,
		Type: models.Type{
			ID:         typeID,
			TypeName:   "Plastic",
			CategoryID: 1,
			Category:   models.Category{ID: 1, CategoryName: "Canisters"},
		},
		Colors: []models.ProductColor{{ID: 1, Color: "#FFFFFF"}},
		Images: []models.ProductImage{{ID: 9, ProductID: id, Image: "images/jug.png"}},
	}
}

func newTestCatalogHandler(repo *MockProductRepo, store *MockStore) *CatalogHandler {
	return NewCatalogHandler(repo, store, testURL, zap.NewNop())
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	var allMockProducts []models.Product
	for i := uint(1); i <= 12; i++ {
		typeID := uint(1)
		if i%2 == 0 {
			typeID = 2
		}
		allMockProducts = append(allMockProducts, newTestProduct(i, "Jug", typeID))
	}

	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls     func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name: "Success with default pagination",
			url:  "/products/",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, int64(12), resp.Count)
				assert.Equal(t, 2, resp.TotalPages)
				assert.Equal(t, 1, resp.CurrentPage)
				assert.True(t, resp.Next)
				assert.False(t, resp.Previous)
				assert.Equal(t, "All", resp.TypeID)
				assert.Len(t, resp.Results, 10)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 1, repo.lastCalledQuery.Page, "Expected default page 1")
				assert.Equal(t, 10, repo.lastCalledQuery.PageSize, "Expected default page size 10")
				assert.Nil(t, repo.lastCalledQuery.TypeID)
			},
		},
		{
			name: "Filter by type echoes the type id",
			url:  "/products/?type=2&page_size=4&page=2",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, int64(6), resp.Count)
				assert.Equal(t, 2, resp.TotalPages)
				assert.Equal(t, 2, resp.CurrentPage)
				assert.False(t, resp.Next)
				assert.True(t, resp.Previous)
				assert.Equal(t, "2", resp.TypeID)
				assert.Len(t, resp.Results, 2)
				assert.Equal(t, uint(10), resp.Results[0].ID)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				if assert.NotNil(t, repo.lastCalledQuery.TypeID) {
					assert.Equal(t, int64(2), *repo.lastCalledQuery.TypeID)
				}
				assert.Equal(t, 4, repo.lastCalledQuery.PageSize)
			},
		},
		{
			name: "Page out of range lands on the last page",
			url:  "/products/?page=99",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 2, resp.CurrentPage)
				assert.Len(t, resp.Results, 2)
			},
		},
		{
			name: "Invalid sort field",
			url:  "/products/?sort=bogus_field",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp api.ErrorBody
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Invalid sort field", resp.Error)
				assert.Contains(t, resp.Details, "sort")
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Nil(t, repo.lastCalledQuery, "Repository should not be queried")
			},
		},
		{
			name: "Invalid numeric filter",
			url:  "/products/?volume_min=five",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp api.ErrorBody
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Invalid volume_min value", resp.Error)
			},
		},
		{
			name: "Repository error",
			url:  "/products/",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: errors.New("database connection failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := newTestCatalogHandler(mockRepo, &MockStore{})
			req := httptest.NewRequest("GET", tc.url, nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGet(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, mockRepo)
			}
		})
	}
}
