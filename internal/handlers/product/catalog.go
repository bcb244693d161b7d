package product

import (
	"net/http"
	"strconv"

	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/middleware"
	"djbooks_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog *services.Catalog
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *services.Catalog, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// GET /api/books
func (h *CatalogHandler) Home(c *gin.Context) {
	page, err := h.catalog.Home(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{
		"books":      page.Books,
		"new_books":  page.NewBooks,
		"categories": page.Categories,
	})
}

// GET /api/books/:slug
func (h *CatalogHandler) Book(c *gin.Context) {
	book, err := h.catalog.Book(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	middleware.SetTitle(c, book.Title)
	handlers.Respond(c, http.StatusOK, gin.H{"book": book})
}

// GET /api/categories/:slug?page=N
func (h *CatalogHandler) Category(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handlers.BadRequest(c, err)
			return
		}
		page = n
	}

	result, err := h.catalog.Category(c.Request.Context(), c.Param("slug"), page)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	middleware.SetTitle(c, result.Category.Name)
	handlers.Respond(c, http.StatusOK, gin.H{"page": result})
}

// GET /api/collection
func (h *CatalogHandler) Collection(c *gin.Context) {
	counts, err := h.catalog.Collection(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"categories": counts})
}

// GET /api/search?q=
func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("q")
	books, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	handlers.Respond(c, http.StatusOK, gin.H{"query": query, "books": books})
}
