package categories

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
)

type ListResponse struct {
	Count   int            `json:"count"`
	Results []api.Category `json:"results"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	CreateCategory(in models.CategoryInput) (*models.Category, error)
	UpdateCategory(id uint, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(id uint) ([]string, error)
}

type CategoryHandler struct {
	repo  CategoryProvider
	store api.ObjectDeleter
	log   *zap.Logger
}

func NewCategoryHandler(r CategoryProvider, store api.ObjectDeleter, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{repo: r, store: store, log: log}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		api.WriteError(w, h.log, err, "Category")
		return
	}

	results := make([]api.Category, len(categories))
	for i, c := range categories {
		results[i] = api.NewCategory(c)
	}

	api.WriteJSON(w, http.StatusOK, ListResponse{Count: len(results), Results: results})
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input models.CategoryInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.BadJSON(w, err)
		return
	}

	category, err := h.repo.CreateCategory(input)
	if err != nil {
		api.WriteError(w, h.log, err, "Category")
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.NewCategory(*category))
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Category")
		return
	}

	category, err := h.repo.GetByID(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Category")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewCategory(*category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Category")
		return
	}

	var input models.CategoryInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.BadJSON(w, err)
		return
	}

	category, err := h.repo.UpdateCategory(id, input)
	if err != nil {
		api.WriteError(w, h.log, err, "Category")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewCategory(*category))
}

// HandleDelete removes the category with its types and products.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Category")
		return
	}

	keys, err := h.repo.DeleteCategory(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Category")
		return
	}
	api.RemoveObjects(r.Context(), h.store, h.log, keys)

	w.WriteHeader(http.StatusNoContent)
}
