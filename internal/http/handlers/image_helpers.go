package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-thumbnails/internal/models"
	"github.com/phambaophuc/image-thumbnails/internal/services/processor"
	"github.com/phambaophuc/image-thumbnails/internal/services/storage"
	"github.com/phambaophuc/image-thumbnails/internal/services/thumbnails"
	"github.com/phambaophuc/image-thumbnails/pkg/utils"
	"go.uber.org/zap"
)

// === REQUEST PARSING ===

func (h *ImageHandler) readUpload(c *gin.Context) (string, []byte, error) {
	maxSize := h.config.Storage.MaxFileSize

	if imageURL := c.PostForm(urlParamKey); imageURL != "" {
		data, _, err := utils.DownloadImage(c.Request.Context(), imageURL, maxSize)
		if err != nil {
			return "", nil, err
		}
		name := c.PostForm("filename")
		if name == "" {
			name = utils.FilenameFromURL(imageURL, "image.jpg")
		}
		return name, data, nil
	}

	file, header, err := c.Request.FormFile(imageParamKey)
	if err != nil {
		return "", nil, errors.New("no image file provided")
	}
	defer file.Close()

	if maxSize > 0 && header.Size > maxSize {
		return "", nil, fmt.Errorf("%w: %d bytes exceeds maximum %d", processor.ErrFileTooLarge, header.Size, maxSize)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}

	name := header.Filename
	if dir := strings.Trim(c.PostForm("path"), "/"); dir != "" {
		name = dir + "/" + name
	}
	return name, data, nil
}

func (h *ImageHandler) parsePreviewSpec(c *gin.Context) (processor.ThumbnailSpec, error) {
	width, err := h.parsePositiveInt(c.PostForm("width"), "width")
	if err != nil {
		return processor.ThumbnailSpec{}, err
	}

	height, err := h.parsePositiveInt(c.PostForm("height"), "height")
	if err != nil {
		return processor.ThumbnailSpec{}, err
	}

	crop, err := processor.ParseCropSpec(c.PostForm("crop"))
	if err != nil {
		return processor.ThumbnailSpec{}, err
	}

	upscale := false
	if v := c.PostForm("upscale"); v != "" {
		if upscale, err = strconv.ParseBool(v); err != nil {
			return processor.ThumbnailSpec{}, fmt.Errorf("invalid upscale: must be a boolean")
		}
	}

	colorspace, err := processor.ParseColorspace(c.PostForm("colorspace"))
	if err != nil {
		return processor.ThumbnailSpec{}, err
	}

	spec := processor.ThumbnailSpec{
		Name:       "preview",
		Geometry:   processor.Geometry{Width: width, Height: height},
		Crop:       crop,
		Upscale:    upscale,
		Format:     c.PostForm("format"),
		Quality:    h.parseQuality(c.PostForm("quality")),
		Colorspace: colorspace,
	}
	return spec, spec.Validate()
}

func (h *ImageHandler) parsePositiveInt(value, fieldName string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%s is required", fieldName)
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", fieldName)
	}

	if num <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", fieldName)
	}

	return num, nil
}

func (h *ImageHandler) parseQuality(value string) int {
	if value == "" {
		return processor.DefaultQuality
	}

	quality, err := strconv.Atoi(value)
	if err != nil || quality < 1 || quality > 100 {
		return processor.DefaultQuality
	}

	return quality
}

func (h *ImageHandler) requireQuery(c *gin.Context, name string) (string, bool) {
	value := c.Query(name)
	if value == "" {
		h.respondError(c, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return value, true
}

func (h *ImageHandler) urlOptions(c *gin.Context) thumbnails.URLOptions {
	ssl, _ := strconv.ParseBool(c.Query("ssl"))
	return thumbnails.URLOptions{SSL: ssl}
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondServiceError maps err to a status code and logs server-side
// failures.
func (h *ImageHandler) respondServiceError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message,
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		h.respondError(c, status, message)
		return
	}
	h.respondError(c, status, fmt.Sprintf("%s: %v", message, err))
}

func statusFor(err error) int {
	var (
		parseErr      *processor.ParseError
		formatErr     *processor.UnsupportedFormatError
		colorspaceErr *processor.UnsupportedColorspaceError
		extErr        *utils.ExtensionError
	)

	switch {
	case processor.IsUnreadable(err),
		errors.Is(err, processor.ErrFileTooLarge),
		errors.As(err, &parseErr),
		errors.As(err, &formatErr),
		errors.As(err, &colorspaceErr),
		errors.As(err, &extErr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, thumbnails.ErrUnknownThumbnail):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// === UTILITY METHODS ===

func statusOf(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
