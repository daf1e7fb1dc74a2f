// Package router builds the HTTP route table for the catalog service.
package router

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/app/auth"
	"github.com/packline/catalog/app/catalog"
	"github.com/packline/catalog/app/categories"
	"github.com/packline/catalog/app/images"
	"github.com/packline/catalog/app/types"
	"github.com/packline/catalog/models"
	"github.com/packline/catalog/storage"
)

type Options struct {
	DB    *gorm.DB
	Store storage.Store
	// Media serves stored objects under MediaPrefix when non-nil.
	Media          http.Handler
	MediaPrefix    string
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *zap.Logger
}

// New wires the repositories into handlers and returns the root handler.
func New(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	categoryRepo := models.NewCategoriesRepository(opts.DB)
	typeRepo := models.NewTypesRepository(opts.DB)
	productRepo := models.NewProductsRepository(opts.DB)
	imageRepo := models.NewImagesRepository(opts.DB)
	userRepo := models.NewUsersRepository(opts.DB)

	tokenHandler := auth.NewTokenHandler(userRepo, log)
	authn := auth.NewAuthenticator(userRepo, log)
	categoryHandler := categories.NewCategoryHandler(categoryRepo, opts.Store, log)
	typeHandler := types.NewTypeHandler(typeRepo, opts.Store, log)
	catalogHandler := catalog.NewCatalogHandler(productRepo, opts.Store, opts.Store.URL, log)
	imageHandler := images.NewImageHandler(imageRepo, opts.Store, opts.MaxUploadBytes, log)

	mux := http.NewServeMux()
	r := routes{mux: mux}

	r.open("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.open("POST /token", tokenHandler.HandleObtainToken)

	r.open("GET /categories", categoryHandler.HandleGetAll)
	r.protected(authn, "POST /categories", categoryHandler.HandleCreate)
	r.open("GET /categories/{id}", categoryHandler.HandleGet)
	r.protected(authn, "PUT /categories/{id}", categoryHandler.HandleUpdate)
	r.protected(authn, "DELETE /categories/{id}", categoryHandler.HandleDelete)

	r.open("GET /types", typeHandler.HandleGetAll)
	r.protected(authn, "POST /types", typeHandler.HandleCreate)
	r.open("GET /types/{id}", typeHandler.HandleGet)
	r.protected(authn, "PUT /types/{id}", typeHandler.HandleUpdate)
	r.protected(authn, "DELETE /types/{id}", typeHandler.HandleDelete)

	r.open("GET /products", catalogHandler.HandleGet)
	r.protected(authn, "POST /products", catalogHandler.HandleCreate)
	r.open("GET /products/{id}", catalogHandler.HandleGetProduct)
	r.protected(authn, "PUT /products/{id}", catalogHandler.HandleUpdate)
	r.protected(authn, "DELETE /products/{id}", catalogHandler.HandleDelete)
	r.protected(authn, "POST /products/{id}/images", imageHandler.HandleCreateForProduct)

	r.open("GET /product-images", imageHandler.HandleGetAll)
	r.protected(authn, "POST /product-images", imageHandler.HandleCreate)
	r.open("GET /product-images/{id}", imageHandler.HandleGet)
	r.protected(authn, "DELETE /product-images/{id}", imageHandler.HandleDelete)

	if opts.Media != nil && opts.MediaPrefix != "" {
		prefix := "/" + strings.Trim(opts.MediaPrefix, "/") + "/"
		mux.Handle("GET "+prefix, opts.Media)
	}

	return api.Chain(mux,
		api.RequestID(),
		api.Logger(log),
		api.Recover(log),
		api.CORS(opts.AllowedOrigins),
	)
}

type routes struct {
	mux *http.ServeMux
}

// handle registers pattern both with and without a trailing slash.
func (r routes) handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
	r.mux.Handle(pattern+"/{$}", h)
}

func (r routes) open(pattern string, h http.HandlerFunc) {
	r.handle(pattern, h)
}

func (r routes) protected(a *auth.Authenticator, pattern string, h http.HandlerFunc) {
	r.handle(pattern, a.RequireFunc(h))
}
