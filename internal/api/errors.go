package api

import (
	"errors"
	"net/http"

	"finance-tracker-backend/internal/logger"
	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// fail writes err as a JSON error. Validation errors become 400, missing or
// foreign records 404, uniqueness conflicts 409 and anything else 500.
func fail(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
