package images

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
	"github.com/packline/catalog/storage"
)

const (
	msgNoFile       = "No file was submitted."
	msgBadExtension = "File extension is not allowed. Allowed extensions are: jpg, jpeg, png."
	msgNotImage     = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgTooLarge     = "The uploaded file is too large."
	msgBadPK        = "Incorrect type. Expected pk value."
)

var allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

var allowedTypes = map[string]bool{"image/jpeg": true, "image/png": true}

type ImageProvider interface {
	GetImages(productID *int64) ([]models.ProductImage, error)
	GetByID(id uint) (*models.ProductImage, error)
	ProductName(productID uint) (string, error)
	CreateImage(productID uint, key string) (*models.ProductImage, error)
	DeleteImage(id uint) (*models.ProductImage, error)
}

type ImageHandler struct {
	repo     ImageProvider
	store    storage.Store
	maxBytes int64
	log      *zap.Logger
}

func NewImageHandler(r ImageProvider, store storage.Store, maxBytes int64, log *zap.Logger) *ImageHandler {
	return &ImageHandler{repo: r, store: store, maxBytes: maxBytes, log: log}
}

func (h *ImageHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	productID, err := models.ParseIDParam(r.URL.Query().Get("product"), "product")
	if err != nil {
		api.WriteError(w, h.log, err, "Image")
		return
	}

	images, err := h.repo.GetImages(productID)
	if err != nil {
		api.WriteError(w, h.log, err, "Image")
		return
	}

	results := make([]api.Image, len(images))
	for i, img := range images {
		results[i] = api.NewImage(img, h.store.URL)
	}
	api.WriteJSON(w, http.StatusOK, results)
}

func (h *ImageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Image")
		return
	}

	img, err := h.repo.GetByID(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Image")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewImage(*img, h.store.URL))
}

// HandleCreate uploads an image for the product named by the "product" form field.
func (h *ImageHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	raw := strings.TrimSpace(r.FormValue("product"))
	if raw == "" {
		api.WriteError(w, h.log, models.NewValidationError("product", "This field is required."), "Product")
		return
	}
	productID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || productID == 0 {
		api.WriteError(w, h.log, models.NewValidationError("product", msgBadPK), "Product")
		return
	}

	h.upload(w, r, uint(productID))
}

// HandleCreateForProduct uploads an image for the product in the path.
func (h *ImageHandler) HandleCreateForProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Product")
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	h.upload(w, r, productID)
}

func (h *ImageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.NotFound(w, "Image")
		return
	}

	img, err := h.repo.DeleteImage(id)
	if err != nil {
		api.WriteError(w, h.log, err, "Image")
		return
	}
	api.RemoveObjects(r.Context(), h.store, h.log, []string{img.Image})

	w.WriteHeader(http.StatusNoContent)
}

func (h *ImageHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	err := r.ParseMultipartForm(h.maxBytes)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		api.WriteError(w, h.log, models.NewValidationError("image", msgTooLarge), "Image")
		return false
	}
	api.WriteError(w, h.log, models.NewValidationError("non_field_errors", "Expected a multipart/form-data body."), "Image")
	return false
}

func (h *ImageHandler) upload(w http.ResponseWriter, r *http.Request, productID uint) {
	file, header, err := r.FormFile("image")
	if err != nil {
		api.WriteError(w, h.log, models.NewValidationError("image", msgNoFile), "Image")
		return
	}
	defer file.Close()

	contentType, verr := checkImage(file, header)
	if verr != nil {
		api.WriteError(w, h.log, verr, "Image")
		return
	}

	name, err := h.repo.ProductName(productID)
	if err != nil {
		api.WriteError(w, h.log, err, "Product")
		return
	}

	key := storage.ImageKey(name, header.Filename)
	if err := h.store.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		api.WriteError(w, h.log, err, "Image")
		return
	}

	img, err := h.repo.CreateImage(productID, key)
	if err != nil {
		api.RemoveObjects(r.Context(), h.store, h.log, []string{key})
		api.WriteError(w, h.log, err, "Product")
		return
	}

	h.log.Info("Image uploaded",
		zap.Uint("product_id", productID),
		zap.String("key", key),
		zap.Int64("size", header.Size),
	)
	api.WriteJSON(w, http.StatusCreated, api.NewImage(*img, h.store.URL))
}

// checkImage validates the extension and the sniffed content type, then
// rewinds file for the upload.
func checkImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if !allowedExtensions[strings.ToLower(path.Ext(header.Filename))] {
		return "", models.NewValidationError("image", msgBadExtension)
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	contentType := http.DetectContentType(buf[:n])
	if !allowedTypes[contentType] {
		return "", models.NewValidationError("image", msgNotImage)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return contentType, nil
}
