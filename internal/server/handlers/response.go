package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/server/middleware"
	"github.com/mamadbah2/farmledger/internal/validation"
)

// envelope is the JSON shape of every API response.
type envelope struct {
	Success bool                    `json:"success"`
	Data    interface{}             `json:"data,omitempty"`
	Message string                  `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// respondNullable keeps a "data": null member for lookups that found nothing.
func respondNullable(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func badRequest(c *gin.Context, message string, details ...validation.FieldError) {
	c.JSON(http.StatusBadRequest, envelope{Error: message, Details: details})
}

// respondError maps domain failures to status codes. Anything unrecognised is
// logged and answered with a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, envelope{Error: "validation failed", Details: verr.Fields})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	}

	var derr *models.DomainError
	if status != http.StatusInternalServerError && errors.As(err, &derr) {
		c.JSON(status, envelope{Error: derr.Message})
		return
	}

	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, envelope{Error: "internal server error"})
}

// principal fetches the authenticated caller; it aborts with 401 when absent.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
	}
	return p, ok
}
