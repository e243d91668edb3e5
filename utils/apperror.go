package utils

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bplcommander/config"
)

// AppError is the typed error taxonomy every handler returns. The central
// ErrorHandler turns it into the standard error envelope.
type AppError struct {
	Code    int         `json:"-"`
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string { return e.Message }

func NewValidationError(message string, details ...interface{}) *AppError {
	e := &AppError{Code: fiber.StatusBadRequest, Message: message}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return &AppError{Code: fiber.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	return &AppError{Code: fiber.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = "Resource not found"
	}
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	if message == "" {
		message = "Conflict"
	}
	return &AppError{Code: fiber.StatusConflict, Message: message}
}

// FromStoreError translates GORM errors into the taxonomy so store-layer
// failures never leak raw to the client.
func FromStoreError(err error) *AppError {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError("Record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflictError("A record with this data already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewValidationError("Invalid reference to related record")
	default:
		return &AppError{Code: fiber.StatusInternalServerError, Message: "Internal server error"}
	}
}

// ErrorHandler is installed as the fiber app's ErrorHandler. Every error that
// escapes a handler lands here and becomes the standard envelope. Untyped 500s
// are reported to Sentry and their details suppressed in production.
func ErrorHandler(c *fiber.Ctx, err error) error {
	appErr := &AppError{}
	if !errors.As(err, &appErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			appErr = &AppError{Code: fiberErr.Code, Message: fiberErr.Message}
		} else {
			appErr = &AppError{Code: fiber.StatusInternalServerError, Message: "Internal server error"}
		}
	}

	logger := Logger("http")
	logger.WithFields(map[string]interface{}{
		"status": appErr.Code,
		"method": c.Method(),
		"path":   c.Path(),
	}).Error(err.Error())

	if appErr.Code >= fiber.StatusInternalServerError {
		sentry.CaptureException(err)
		if config.IsProduction() {
			appErr.Message = "Something went wrong"
			appErr.Details = nil
		} else {
			appErr.Details = err.Error()
		}
	}

	body := fiber.Map{
		"success": false,
		"error":   appErr.Message,
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	return c.Status(appErr.Code).JSON(body)
}
