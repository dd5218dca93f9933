package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/route-orders-api/logger"
	"github.com/kendall-kelly/route-orders-api/middleware"
	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/kendall-kelly/route-orders-api/services"
	"github.com/kendall-kelly/route-orders-api/utils"
	"go.uber.org/zap"
)

// respondSuccess writes {"success": true, "message": ..., "data": ...}
func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondServiceError maps a service error to its HTTP status
func respondServiceError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
		return
	}

	var oe *services.OrderError
	if !errors.As(err, &oe) {
		logger.FromContext(c.Request.Context()).Error("unhandled error", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong", nil)
		return
	}

	var details interface{}
	if len(oe.Details) > 0 {
		details = oe.Details
	}

	switch oe.Kind {
	case services.KindInvalidArgument:
		respondError(c, http.StatusBadRequest, oe.Code, oe.Message, details)
	case services.KindNotFound:
		respondError(c, http.StatusNotFound, oe.Code, oe.Message, details)
	case services.KindConflict:
		respondError(c, http.StatusConflict, oe.Code, oe.Message, details)
	default:
		respondError(c, http.StatusInternalServerError, oe.Code, oe.Message, nil)
	}
}

// fieldError is one failed binding rule
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondValidationError reports request binding failures, per field when
// the validator produced them
func respondValidationError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]fieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", details)
		return
	}
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// currentUser returns the authenticated user, writing a 401 when absent
func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
		return nil, false
	}
	return user, true
}

// actingCustomerID returns the customer an order request applies to: the
// caller, or for admins the customer named by the customer_id query parameter
func actingCustomerID(c *gin.Context) (uint, bool) {
	user, ok := currentUser(c)
	if !ok {
		return 0, false
	}

	raw := c.Query("customer_id")
	if raw == "" {
		return user.ID, true
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "customer_id must be a positive integer", nil)
		return 0, false
	}
	if uint(id) != user.ID && !user.IsAdmin() {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only admins can act on behalf of another customer", nil)
		return 0, false
	}
	return uint(id), true
}

// parseIDParam parses a positive integer from a path or query value
func parseIDParam(c *gin.Context, name, raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a positive integer", nil)
		return 0, false
	}
	return uint(id), true
}
