package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aldikurniawan2005/media-capture/internal/catalog"
	"github.com/aldikurniawan2005/media-capture/internal/domain"
	"github.com/aldikurniawan2005/media-capture/internal/media"
	"github.com/aldikurniawan2005/media-capture/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FileHandler struct {
	storage storage.Storage
	catalog Catalog
	logger  *zap.Logger
}

func NewFileHandler(storage storage.Storage, catalog Catalog, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		storage: storage,
		catalog: catalog,
		logger:  logger,
	}
}

// GetFile serves /<category>/*filename.
func (h *FileHandler) GetFile(category domain.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := strings.TrimPrefix(c.Param("filename"), "/")

		file, item, err := h.storage.Open(c.Request.Context(), category, filename)
		switch {
		case errors.Is(err, storage.ErrPathTraversal):
			h.logger.Warn("Rejected filename", zap.String("filename", filename))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid filename"})
			return
		case errors.Is(err, storage.ErrNotFound):
			h.logger.Warn("File not found", zap.String("category", category.String()), zap.String("filename", filename))
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "File not found"})
			return
		case err != nil:
			h.logger.Error("Failed to open file", zap.String("filename", filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Storage unavailable"})
			return
		}
		defer file.Close()

		entry, err := h.catalog.Get(category, filename)
		switch {
		case err == nil && entry.Digest != "" && entry.Matches(item):
			c.Header("ETag", `"`+entry.Digest+`"`)
		case err != nil && !errors.Is(err, catalog.ErrNotIndexed):
			h.logger.Warn("Catalog lookup failed", zap.String("filename", filename), zap.Error(err))
		}

		c.Header("Content-Type", media.ContentType(filename))
		http.ServeContent(c.Writer, c.Request, filename, item.ModTime, file)
	}
}
