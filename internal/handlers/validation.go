package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/getmentor/mentorship-api/internal/services"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) []ValidationError {
	var result []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			result = append(result, ValidationError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return result
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		if fe.Kind() == reflect.Int {
			return fe.Field() + " must be at least " + fe.Param()
		}
		return fe.Field() + " must have at least " + fe.Param() + " items or characters"
	case "max":
		if fe.Kind() == reflect.Int {
			return fe.Field() + " must not exceed " + fe.Param()
		}
		return fe.Field() + " must not exceed " + fe.Param() + " items or characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// bindJSON binds and validates the request body, answering 400 on failure
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var details any = err.Error()
	if fields := ParseValidationErrors(err); len(fields) > 0 {
		details = fields
	}
	respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", details, err)
}

func hasBody(c *gin.Context) bool {
	return c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0
}

// inputBinder binds bodies of lifecycle operations. Rejected input is reported
// to the notifier like any other failed operation.
type inputBinder struct {
	notifier services.Notifier
}

func (b inputBinder) bind(c *gin.Context, operation string, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	services.NotifyFailure(c.Request.Context(), b.notifier, operation, invalidInput(err))
	respondBindError(c, err)
	return false
}

// bindOptional is bind for endpoints whose body may be omitted
func (b inputBinder) bindOptional(c *gin.Context, operation string, obj any) bool {
	if !hasBody(c) {
		return true
	}
	return b.bind(c, operation, obj)
}

// invalidInput turns a binding failure into a validation error with readable field messages
func invalidInput(err error) error {
	fields := ParseValidationErrors(err)
	if len(fields) == 0 {
		return fmt.Errorf("malformed request body: %w", apperrors.ErrValidation)
	}

	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, f.Message)
	}
	return fmt.Errorf("%s: %w", strings.Join(messages, "; "), apperrors.ErrValidation)
}
