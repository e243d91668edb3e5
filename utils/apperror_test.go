package utils

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"record not found", gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, fiber.StatusConflict},
		{"foreign key violated", gorm.ErrForeignKeyViolated, fiber.StatusBadRequest},
		{"unknown error", errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromStoreError(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, NewValidationError("bad").Code)
	assert.Equal(t, fiber.StatusUnauthorized, NewUnauthorizedError("").Code)
	assert.Equal(t, fiber.StatusForbidden, NewForbiddenError("").Code)
	assert.Equal(t, fiber.StatusNotFound, NewNotFoundError("").Code)
	assert.Equal(t, fiber.StatusConflict, NewConflictError("").Code)

	withDetails := NewValidationError("invalid", "field x is required")
	assert.Equal(t, "field x is required", withDetails.Details)

	assert.Equal(t, "Unauthorized", NewUnauthorizedError("").Message)
	assert.Equal(t, "custom", NewNotFoundError("custom").Message)
}
