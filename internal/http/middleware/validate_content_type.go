package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-thumbnails/internal/models"
)

// ValidateContentType rejects requests whose body is not one of the allowed
// media types.
func ValidateContentType(allowed ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		contentType := strings.ToLower(ctx.GetHeader("Content-Type"))

		for _, a := range allowed {
			if strings.HasPrefix(contentType, a) {
				ctx.Next()
				return
			}
		}

		ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.APIResponse{
			Success: false,
			Error:   "Content-Type must be one of: " + strings.Join(allowed, ", "),
		})
	}
}
