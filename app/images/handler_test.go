package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

// --- Mocks ---

type MockImageRepo struct {
	Images    []models.ProductImage
	Products  map[uint]string
	CreateErr error

	lastProductID *int64
	created       []string
}

func (m *MockImageRepo) GetImages(productID *int64) ([]models.ProductImage, error) {
	m.lastProductID = productID
	var out []models.ProductImage
	for _, img := range m.Images {
		if productID == nil || int64(img.ProductID) == *productID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *MockImageRepo) GetByID(id uint) (*models.ProductImage, error) {
	for _, img := range m.Images {
		if img.ID == id {
			found := img
			return &found, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MockImageRepo) ProductName(productID uint) (string, error) {
	name, ok := m.Products[productID]
	if !ok {
		return "", models.ErrNotFound
	}
	return name, nil
}

func (m *MockImageRepo) CreateImage(productID uint, key string) (*models.ProductImage, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.created = append(m.created, key)
	return &models.ProductImage{ID: 30, ProductID: productID, Image: key}, nil
}

func (m *MockImageRepo) DeleteImage(id uint) (*models.ProductImage, error) {
	img, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	return img, nil
}

type MockStore struct {
	Objects map[string][]byte
	Deleted []string
}

func (m *MockStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
	}
	m.Objects[key] = b
	return nil
}

func (m *MockStore) Delete(_ context.Context, key string) error {
	m.Deleted = append(m.Deleted, key)
	delete(m.Objects, key)
	return nil
}

func (m *MockStore) URL(key string) string {
	return "http://cdn.test/" + key
}

// --- Helpers ---

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

// --- Tests ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		fields             map[string]string
		filename           string
		content            []byte
		mockRepoSetup      func() *MockImageRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder, store *MockStore)
	}{
		{
			name:     "Success",
			fields:   map[string]string{"product": "1"},
			filename: "Front.PNG",
			content:  pngBytes,
			mockRepoSetup: func() *MockImageRepo {
				return &MockImageRepo{Products: map[uint]string{1: "Jug 5L"}}
			},
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder, store *MockStore) {
				var resp api.Image
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, uint(1), resp.Product)
				assert.True(t, strings.HasPrefix(resp.ImageURL, "http://cdn.test/images/jug-5l-"), resp.ImageURL)
				assert.True(t, strings.HasSuffix(resp.ImageURL, ".png"))
				assert.Len(t, store.Objects, 1)
			},
		},
		{
			name:     "Missing product field",
			filename: "a.png",
			content:  pngBytes,
			mockRepoSetup: func() *MockImageRepo {
				return &MockImageRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder, _ *MockStore) {
				assert.JSONEq(t, `{"error":"Invalid data","details":{"product":["This field is required."]}}`, rec.Body.String())
			},
		},
		{
			name:     "Unknown product",
			fields:   map[string]string{"product": "9"},
			filename: "a.png",
			content:  pngBytes,
			mockRepoSetup: func() *MockImageRepo {
				return &MockImageRepo{Products: map[uint]string{}}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder, store *MockStore) {
				assert.JSONEq(t, `{"detail":"Product not found"}`, rec.Body.String())
				assert.Empty(t, store.Objects)
			},
		},
		{
			name:     "Missing file",
			fields:   map[string]string{"product": "1"},
			mockRepoSetup: func() *MockImageRepo {
				return &MockImageRepo{Products: map[uint]string{1: "Jug"}}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder, _ *MockStore) {
				assert.Contains(t, rec.Body.String(), msgNoFile)
			},
		},
		{
			name:     "Disallowed extension",
			fields:   map[string]string{"product": "1"},
			filename: "photo.gif",
			content:  pngBytes,
			mockRepoSetup: func() *MockImageRepo {
				return &MockImageRepo{Products: map[uint]string{1: "Jug"}}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder, _ *MockStore) {
				assert.Contains(t, rec.Body.String(), "File extension")
			},
		},
		{
			name:     "Content is not an image",
			fields:   map[string]string{"product": "1"},
			filename: "fake.jpg",
			content:  []byte("just some text pretending"),
			mockRepoSetup: func() *MockImageRepo {
				return &MockImageRepo{Products: map[uint]string{1: "Jug"}}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder, _ *MockStore) {
				assert.Contains(t, rec.Body.String(), "Upload a valid image")
			},
		},
		{
			name:     "Stored object is removed when the row cannot be written",
			fields:   map[string]string{"product": "1"},
			filename: "a.png",
			content:  pngBytes,
			mockRepoSetup: func() *MockImageRepo {
				return &MockImageRepo{Products: map[uint]string{1: "Jug"}, CreateErr: errors.New("insert failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, _ *httptest.ResponseRecorder, store *MockStore) {
				assert.Empty(t, store.Objects)
				assert.Len(t, store.Deleted, 1)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			repo := tc.mockRepoSetup()
			store := &MockStore{}
			handler := NewImageHandler(repo, store, 1<<20, zap.NewNop())
			body, contentType := multipartBody(t, tc.fields, tc.filename, tc.content)
			req := httptest.NewRequest("POST", "/product-images/", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec, store)
			}
		})
	}
}

func TestHandleCreateTooLarge(t *testing.T) {
	repo := &MockImageRepo{Products: map[uint]string{1: "Jug"}}
	handler := NewImageHandler(repo, &MockStore{}, 1024, zap.NewNop())

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 4096)...)
	body, contentType := multipartBody(t, map[string]string{"product": "1"}, "big.png", big)
	req := httptest.NewRequest("POST", "/product-images/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleCreate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.created)
}

func TestHandleCreateForProduct(t *testing.T) {
	repo := &MockImageRepo{Products: map[uint]string{5: "Canister"}}
	store := &MockStore{}
	handler := NewImageHandler(repo, store, 1<<20, zap.NewNop())

	jpeg := append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 32)...)
	body, contentType := multipartBody(t, nil, "side.jpeg", jpeg)
	req := httptest.NewRequest("POST", "/products/5/images/", body)
	req.Header.Set("Content-Type", contentType)
	req.SetPathValue("id", "5")
	rec := httptest.NewRecorder()

	handler.HandleCreateForProduct(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.created, 1)
	assert.True(t, strings.HasPrefix(repo.created[0], "images/canister-"))
	assert.Equal(t, jpeg, store.Objects[repo.created[0]])
}

func TestHandleGetAll(t *testing.T) {
	repo := &MockImageRepo{Images: []models.ProductImage{
		{ID: 1, ProductID: 1, Image: "images/a.png"},
		{ID: 2, ProductID: 2, Image: "images/b.png"},
	}}
	handler := NewImageHandler(repo, &MockStore{}, 1<<20, zap.NewNop())

	req := httptest.NewRequest("GET", "/product-images/?product=2", nil)
	rec := httptest.NewRecorder()
	handler.HandleGetAll(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []api.Image
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "http://cdn.test/images/b.png", resp[0].ImageURL)

	req = httptest.NewRequest("GET", "/product-images/?product=x", nil)
	rec = httptest.NewRecorder()
	handler.HandleGetAll(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	repo := &MockImageRepo{Images: []models.ProductImage{{ID: 3, ProductID: 1, Image: "images/c.png"}}}
	store := &MockStore{}
	handler := NewImageHandler(repo, store, 1<<20, zap.NewNop())

	req := httptest.NewRequest("DELETE", "/product-images/3/", nil)
	req.SetPathValue("id", "3")
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"images/c.png"}, store.Deleted)

	req = httptest.NewRequest("DELETE", "/product-images/4/", nil)
	req.SetPathValue("id", "4")
	rec = httptest.NewRecorder()
	handler.HandleDelete(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
