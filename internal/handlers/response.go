package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/middleware"
	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/services"
)

// SuccessResponse sends a standardized success response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": c.GetString(middleware.RequestIDKey),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		response["data"] = data
	}
	c.JSON(statusCode, response)
}

// ErrorResponse sends a standardized error response. Internal error details
// never reach the client.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success":    false,
		"message":    message,
		"request_id": c.GetString(middleware.RequestIDKey),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleServiceError maps service errors onto HTTP statuses. Anything not
// in the taxonomy is a 500 with the details kept server-side.
func HandleServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case isNotFound(err):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case isForbidden(err):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case isValidation(err):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case isConflict(err):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case isUpstream(err):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		logger.WithFields(logrus.Fields{
			"error":      err,
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.Request.URL.Path,
		}).Error("Request failed")
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

func isNotFound(err error) bool {
	_, ok := services.IsNotFoundError(err)
	return ok
}

func isForbidden(err error) bool {
	_, ok := services.IsForbiddenError(err)
	return ok
}

func isValidation(err error) bool {
	if _, ok := services.IsValidationError(err); ok {
		return true
	}
	_, ok := services.IsInvalidStateError(err)
	return ok
}

func isConflict(err error) bool {
	_, ok := services.IsConflictError(err)
	return ok
}

func isUpstream(err error) bool {
	_, ok := services.IsUpstreamError(err)
	return ok
}
