package handler

import (
	"errors"
	"net/http"

	"github.com/aldikurniawan2005/media-capture/internal/catalog"
	"github.com/aldikurniawan2005/media-capture/internal/domain"
	"github.com/aldikurniawan2005/media-capture/internal/media"
	"github.com/aldikurniawan2005/media-capture/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Catalog records what was stored so files can be served with a content
// digest.
type Catalog interface {
	Put(item domain.MediaItem) error
	Get(category domain.Category, filename string) (catalog.Entry, error)
}

type UploadHandler struct {
	storage storage.Storage
	catalog Catalog
	maxSize int64
	logger  *zap.Logger
}

// NewUploadHandler builds the upload endpoint. A maxSize of 0 accepts files of
// any size.
func NewUploadHandler(storage storage.Storage, catalog Catalog, maxSize int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		storage: storage,
		catalog: catalog,
		maxSize: maxSize,
		logger:  logger,
	}
}

type UploadResponse struct {
	Status   string `json:"status"`
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
}

// record runs under the storage path lock, so the entry always describes the
// upload that ended up on disk. The file is already committed at this point;
// without an entry it is still listed and served, just without an ETag.
func (h *UploadHandler) record(item domain.MediaItem) {
	if err := h.catalog.Put(item); err != nil {
		h.logger.Error("Failed to index file",
			zap.String("category", item.Category.String()),
			zap.String("filename", item.Filename),
			zap.Error(err),
		)
	}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		// A file input submitted without a selection arrives as a part with
		// an empty filename, which the multipart reader files under values.
		if form := c.Request.MultipartForm; form != nil {
			if _, ok := form.Value["file"]; ok {
				h.logger.Warn("Upload without a filename")
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No selected file"})
				return
			}
		}
		h.logger.Warn("Failed to get file from form", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file part"})
		return
	}

	if file.Filename == "" {
		h.logger.Warn("Upload without a filename")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No selected file"})
		return
	}

	category, mimeType, ok := media.Classify(file.Filename, file.Header.Get("Content-Type"))
	if !ok {
		h.logger.Warn("Unsupported MIME type", zap.String("filename", file.Filename), zap.String("contentType", mimeType))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   (&media.UnsupportedTypeError{MIME: mimeType}).Error(),
			Details: mimeType,
		})
		return
	}

	if h.maxSize > 0 && file.Size > h.maxSize {
		h.logger.Warn("File too large", zap.Int64("size", file.Size), zap.Int64("max", h.maxSize))
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "File too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process file"})
		return
	}
	defer src.Close()

	item, err := h.storage.Save(c.Request.Context(), category, file.Filename, src, h.record)
	switch {
	case errors.Is(err, storage.ErrPathTraversal):
		h.logger.Warn("Rejected filename", zap.String("filename", file.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid filename"})
		return
	case errors.Is(err, storage.ErrStorageUnavailable):
		h.logger.Error("Storage unavailable", zap.String("category", category.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Storage unavailable"})
		return
	case err != nil:
		h.logger.Error("Failed to save file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save file"})
		return
	}

	h.logger.Info("File uploaded successfully",
		zap.String("category", category.String()),
		zap.String("filename", item.Filename),
		zap.Int64("size", item.Size),
		zap.String("digest", item.Digest),
	)
	c.JSON(http.StatusOK, UploadResponse{
		Status:   "success",
		Folder:   category.String(),
		Filename: item.Filename,
	})
}
