package types

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
)

type ListResponse struct {
	Count int `json:"count"`
	// CategoryID echoes the category filter, or "All".
	CategoryID any        `json:"category_id"`
	Results    []api.Type `json:"results"`
}

type TypeProvider interface {
	GetTypes(categoryID *int64) ([]models.Type, error)
	GetByID(id uint) (*models.Type, error)
	CreateType(in models.TypeInput) (*models.Type, error)
	UpdateType(id uint, in models.TypeInput) (*models.Type, error)
	DeleteType(id uint) ([]string, error)
}

type TypeHandler struct {
	repo  TypeProvider
	store api.ObjectDeleter
	log   *zap.Logger
}

func NewTypeHandler(r TypeProvider, store api.ObjectDeleter, log *zap.Logger) *TypeHandler {
	return &TypeHandler{repo: r, store: store, log: log}
}

func (h *TypeHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categoryID, err := models.ParseIDParam(r.URL.Query().Get("category"), "category")
	if err != nil {
		api.WriteError(w, h.log, err, "Type")
		return
	}

	types, err := h.repo.GetTypes(categoryID)
	if err != nil {
		api.WriteError(w, h.log, err, "Type")
		return
	}

	results := make([]api.Type, len(types))
	for i, t := range types {
		results[i] = api.NewType(t)
	}

	var echo any = "All"
	if categoryID != nil {
		echo = strconv.FormatInt(*categoryID, 10)
	}

	api.WriteJSON(w, http.StatusOK, ListResponse{Count: len(results), CategoryID: echo, Results: results})
}

func (h *TypeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input models.TypeInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.BadJSON(w, err)
		return
	}

	t, err := h.repo.CreateType(input)
	if err != nil {
		api.WriteError(w, h.log, err, "Type")
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.NewType(*t))
}

func (h *TypeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Type")
		return
	}

	t, err := h.repo.GetByID(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Type")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewType(*t))
}

func (h *TypeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Type")
		return
	}

	var input models.TypeInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.BadJSON(w, err)
		return
	}

	t, err := h.repo.UpdateType(id, input)
	if err != nil {
		api.WriteError(w, h.log, err, "Type")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewType(*t))
}

func (h *TypeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Type")
		return
	}

	keys, err := h.repo.DeleteType(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Type")
		return
	}
	api.RemoveObjects(r.Context(), h.store, h.log, keys)

	w.WriteHeader(http.StatusNoContent)
}
