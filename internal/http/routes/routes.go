package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-thumbnails/internal/http/handlers"
	"github.com/phambaophuc/image-thumbnails/internal/http/middleware"
	"go.uber.org/zap"
)

const (
	contentMultipart = "multipart/form-data"
	contentForm      = "application/x-www-form-urlencoded"
	contentJSON      = "application/json"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	logger       *zap.Logger
	mediaRoot    string
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		logger:       logger,
	}
}

// ServeMedia exposes files stored by the local backend under /media.
func (r *Router) ServeMedia(root string) {
	r.mediaRoot = root
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	if r.mediaRoot != "" {
		router.Static("/media", r.mediaRoot)
	}

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)

		images := v1.Group("/images")
		{
			images.POST("",
				middleware.ValidateContentType(contentMultipart, contentForm),
				r.imageHandler.UploadImage)
			images.GET("/urls", r.imageHandler.GetThumbnailURLs)
			images.GET("/url", r.imageHandler.GetThumbnailURL)
			images.DELETE("/*key", r.imageHandler.DeleteImage)
		}

		thumbs := v1.Group("/thumbnails")
		{
			thumbs.POST("/preview",
				middleware.ValidateContentType(contentMultipart),
				r.imageHandler.PreviewThumbnail)
			thumbs.POST("/regenerate",
				middleware.ValidateContentType(contentJSON),
				r.imageHandler.RegenerateThumbnails)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image thumbnail service is running",
		})
	})

	return router
}
