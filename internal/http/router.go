package http

import (
	"fmt"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
	"github.com/aldikurniawan2005/media-capture/internal/http/handler"
	"github.com/aldikurniawan2005/media-capture/internal/http/view"
	"github.com/aldikurniawan2005/media-capture/internal/log"
	"github.com/aldikurniawan2005/media-capture/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(storage storage.Storage, catalog handler.Catalog, maxFileSize int64, logger *zap.Logger) (*gin.Engine, error) {
	tmpl, err := view.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(log.Middleware(logger), gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	healthHandler := handler.NewHealthHandler()
	uploadHandler := handler.NewUploadHandler(storage, catalog, maxFileSize, logger)
	galleryHandler := handler.NewGalleryHandler(storage, logger)
	fileHandler := handler.NewFileHandler(storage, catalog, logger)

	router.GET("/healthz", healthHandler.Health)
	router.GET("/", galleryHandler.Home)
	router.POST("/upload", uploadHandler.Upload)
	router.GET("/gallery/:category", galleryHandler.Gallery)

	for _, c := range domain.Categories() {
		router.GET("/"+c.String()+"/*filename", fileHandler.GetFile(c))
	}

	return router, nil
}
