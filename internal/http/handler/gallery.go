package handler

import (
	"net/http"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
	"github.com/aldikurniawan2005/media-capture/internal/http/view"
	"github.com/aldikurniawan2005/media-capture/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GalleryHandler struct {
	storage storage.Storage
	logger  *zap.Logger
}

func NewGalleryHandler(storage storage.Storage, logger *zap.Logger) *GalleryHandler {
	return &GalleryHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *GalleryHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", nil)
}

// Gallery lists a category straight from disk on every request.
func (h *GalleryHandler) Gallery(c *gin.Context) {
	category, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Gallery not found"})
		return
	}

	items, err := h.storage.List(c.Request.Context(), category)
	if err != nil {
		h.logger.Error("Failed to list gallery", zap.String("category", category.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Storage unavailable"})
		return
	}

	c.HTML(http.StatusOK, "gallery.html", view.NewGallery(category, items))
}
