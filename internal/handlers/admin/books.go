package admin

import (
	"mime/multipart"
	"net/http"
	"strings"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadMemory = 32 << 20

type BookHandler struct {
	catalog *services.Catalog
	images  *services.Images
	logger  *zap.Logger
}

func NewBookHandler(catalog *services.Catalog, images *services.Images, logger *zap.Logger) *BookHandler {
	return &BookHandler{catalog: catalog, images: images, logger: logger}
}

// POST /api/admin/books
func (h *BookHandler) Create(c *gin.Context) {
	var book models.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	if strings.TrimSpace(book.Title) == "" {
		handlers.RespondError(c, h.logger, models.NewValidationError(map[string]string{"title": "This field is required."}))
		return
	}
	book.ID = 0

	saved, err := h.catalog.SaveBook(c.Request.Context(), book)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusCreated, gin.H{"book": saved})
}

// PUT /api/admin/books/:slug
// Fields missing from the body keep their stored value.
func (h *BookHandler) Update(c *gin.Context) {
	slug := c.Param("slug")
	book, err := h.catalog.Book(c.Request.Context(), slug)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}

	id := book.ID
	if err := c.ShouldBindJSON(&book); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	book.ID = id
	book.Slug = slug

	saved, err := h.catalog.SaveBook(c.Request.Context(), book)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"book": saved})
}

// POST /api/admin/books/:slug/images
// Multipart form: one or more "images" files and an optional "role"
// (gallery, cover or back).
func (h *BookHandler) UploadImages(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	role, err := models.ParseImageRole(c.PostForm("role"))
	if err != nil {
		handlers.RespondError(c, h.logger, models.NewValidationError(map[string]string{"role": err.Error()}))
		return
	}

	headers := c.Request.MultipartForm.File["images"]
	uploads := make([]services.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			handlers.BadRequest(c, err)
			return
		}
		defer f.Close()
		uploads = append(uploads, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: contentType(fh),
			Size:        fh.Size,
			Body:        f,
		})
	}

	images, err := h.images.Upload(c.Request.Context(), c.Param("slug"), role, uploads)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusCreated, gin.H{"images": images})
}

// GET /api/admin/books/:slug/images
func (h *BookHandler) ListImages(c *gin.Context) {
	images, err := h.images.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"images": images})
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
