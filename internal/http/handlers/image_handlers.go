package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-thumbnails/internal/config"
	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/phambaophuc/image-thumbnails/internal/services/processor"
	"github.com/phambaophuc/image-thumbnails/internal/services/thumbnails"
	"go.uber.org/zap"
)

const (
	maxCacheAge   = 3600
	imageParamKey = "image"
	urlParamKey   = "url"
)

// RegenerationQueue accepts thumbnail regeneration jobs.
type RegenerationQueue interface {
	Enqueue(ctx context.Context, keys []string) (*models.RegenerateJob, error)
	GetQueueStats() (map[string]interface{}, error)
	HealthCheck() string
}

// CacheMonitor reports on the URL cache.
type CacheMonitor interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
	HealthCheck(ctx context.Context) error
}

type ImageHandler struct {
	thumbnails *thumbnails.Service
	engine     *processor.Engine
	queue      RegenerationQueue
	cache      CacheMonitor
	logger     *zap.Logger
	config     *config.Config
}

// NewImageHandler builds the handler. queue and cache may be nil when those
// services are not configured.
func NewImageHandler(
	thumbs *thumbnails.Service,
	engine *processor.Engine,
	queue RegenerationQueue,
	cache CacheMonitor,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		thumbnails: thumbs,
		engine:     engine,
		queue:      queue,
		cache:      cache,
		logger:     logger,
		config:     config,
	}
}

// === MAIN API ENDPOINTS ===

// UploadImage stores an original sent as the multipart "image" file, or
// fetched from the "url" form field, and generates its thumbnails.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	filename, data, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.thumbnails.Upload(c.Request.Context(), filename, data)
	if err != nil {
		h.respondServiceError(c, "Upload failed", err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    resp,
	})
}

func (h *ImageHandler) DeleteImage(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		h.respondError(c, http.StatusBadRequest, "key is required")
		return
	}

	ctx := c.Request.Context()
	exists, err := h.thumbnails.Backend().Exists(ctx, key)
	if err != nil {
		h.respondServiceError(c, "Delete failed", err)
		return
	}
	if !exists {
		h.respondError(c, http.StatusNotFound, "image not found")
		return
	}

	if err := h.thumbnails.Delete(ctx, key); err != nil {
		h.respondServiceError(c, "Delete failed", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"key": key},
	})
}

func (h *ImageHandler) GetThumbnailURLs(c *gin.Context) {
	key, ok := h.requireQuery(c, "key")
	if !ok {
		return
	}

	urls, err := h.thumbnails.URLs(c.Request.Context(), key, h.urlOptions(c))
	if err != nil {
		h.respondServiceError(c, "URL lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    models.ThumbnailURLs{Key: key, URLs: urls},
	})
}

func (h *ImageHandler) GetThumbnailURL(c *gin.Context) {
	key, ok := h.requireQuery(c, "key")
	if !ok {
		return
	}
	thumb, ok := h.requireQuery(c, "thumb")
	if !ok {
		return
	}

	url, err := h.thumbnails.URL(c.Request.Context(), key, thumb, h.urlOptions(c))
	if err != nil {
		h.respondServiceError(c, "URL lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"key": key, "thumb": thumb, "url": url},
	})
}

// PreviewThumbnail renders a single thumbnail from form parameters without
// storing anything.
func (h *ImageHandler) PreviewThumbnail(c *gin.Context) {
	file, header, err := c.Request.FormFile(imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	if _, err := processor.ValidateImage(file, h.config.Storage.MaxFileSize); err != nil {
		h.respondServiceError(c, "Invalid image", err)
		return
	}

	spec, err := h.parsePreviewSpec(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	img, srcFormat, err := h.engine.Decode(file)
	if err != nil {
		h.respondServiceError(c, "Invalid image", err)
		return
	}

	artifact, err := h.engine.Thumbnail(img, srcFormat, spec)
	if err != nil {
		h.respondServiceError(c, "Preview failed", err)
		return
	}

	h.logger.Debug("Preview rendered",
		zap.String("filename", header.Filename),
		zap.String("geometry", spec.Geometry.String()),
		zap.String("crop", spec.Crop.String()))

	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(maxCacheAge))
	c.Header("X-Image-Width", strconv.Itoa(artifact.Width))
	c.Header("X-Image-Height", strconv.Itoa(artifact.Height))
	c.Data(http.StatusOK, artifact.Format.ContentType(), artifact.Data)
}

func (h *ImageHandler) RegenerateThumbnails(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "regeneration queue is not configured")
		return
	}

	var req models.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	job, err := h.queue.Enqueue(c.Request.Context(), req.Keys)
	if err != nil {
		h.logger.Error("Failed to enqueue regeneration", zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "failed to enqueue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	backend := h.thumbnails.Backend()

	services := map[string]string{
		"storage": statusOf(backend.HealthCheck(ctx)),
		"redis":   "not configured",
		"queue":   "not configured",
	}
	if h.cache != nil {
		services["redis"] = statusOf(h.cache.HealthCheck(ctx))
	}
	if h.queue != nil {
		services["queue"] = h.queue.HealthCheck()
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Storage:   backend.Name(),
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"thumbnails": h.thumbnails.Names(),
		"timestamp":  time.Now(),
	}

	if h.cache != nil {
		cacheStats, err := h.cache.Stats(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to get cache stats", zap.Error(err))
		} else {
			stats["cache"] = cacheStats
		}
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
		} else {
			stats["queue"] = queueStats
		}
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
