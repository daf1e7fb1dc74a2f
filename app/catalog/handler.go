package catalog

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
)

type Response struct {
	Count       int64 `json:"count"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	Next        bool  `json:"next"`
	Previous    bool  `json:"previous"`
	// TypeID echoes the type filter, or "All".
	TypeID  any           `json:"type_id"`
	Results []api.Product `json:"results"`
}

type ProductProvider interface {
	GetFilteredProducts(q models.ProductQuery) ([]models.Product, models.Page, error)
	GetByID(id uint) (*models.Product, error)
	CreateProduct(in models.ProductInput) (*models.Product, error)
	UpdateProduct(id uint, in models.ProductInput) (*models.Product, error)
	DeleteProduct(id uint) ([]string, error)
}

type CatalogHandler struct {
	repo  ProductProvider
	store api.ObjectDeleter
	url   api.URLFunc
	log   *zap.Logger
}

func NewCatalogHandler(r ProductProvider, store api.ObjectDeleter, url api.URLFunc, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:  r,
		store: store,
		url:   url,
		log:   log,
	}
}

// HandleGet lists products matching the query string filters, sorted and paged.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	query, err := models.ParseProductQuery(r.URL.Query())
	if err != nil {
		api.WriteError(w, h.log, err, "Product")
		return
	}

	res, page, err := h.repo.GetFilteredProducts(query)
	if err != nil {
		api.WriteError(w, h.log, err, "Product")
		return
	}

	products := make([]api.Product, len(res))
	for i, p := range res {
		products[i] = api.NewProduct(p, h.url)
	}

	var typeID any = "All"
	if query.TypeID != nil {
		typeID = strconv.FormatInt(*query.TypeID, 10)
	}

	api.WriteJSON(w, http.StatusOK, Response{
		Count:       page.Count,
		TotalPages:  page.TotalPages,
		CurrentPage: page.Number,
		Next:        page.HasNext,
		Previous:    page.HasPrevious,
		TypeID:      typeID,
		Results:     products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Product")
		return
	}

	product, err := h.repo.GetByID(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Product")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewProduct(*product, h.url))
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.BadJSON(w, err)
		return
	}

	product, err := h.repo.CreateProduct(input)
	if err != nil {
		api.WriteError(w, h.log, err, "Product")
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.NewProduct(*product, h.url))
}

// HandleUpdate applies a partial update. Keys sent as null clear the attribute.
func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Product")
		return
	}

	var input models.ProductInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.BadJSON(w, err)
		return
	}

	product, err := h.repo.UpdateProduct(id, input)
	if err != nil {
		api.WriteError(w, h.log, err, "Product")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewProduct(*product, h.url))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Product")
		return
	}

	keys, err := h.repo.DeleteProduct(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Product")
		return
	}
	api.RemoveObjects(r.Context(), h.store, h.log, keys)

	w.WriteHeader(http.StatusNoContent)
}
