package exception

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestResolve(t *testing.T) {
	type payload struct {
		Email string `validate:"required"`
	}
	validationErr := validator.New().Struct(payload{})

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"typed", Conflict("Contact already exists"), fiber.StatusConflict, "Contact already exists"},
		{"wrapped", fmt.Errorf("add contact: %w", NotFound("User not found")), fiber.StatusNotFound, "User not found"},
		{"otp", ErrOtpExpired, fiber.StatusBadRequest, "Verification code expired"},
		{"unavailable", Unavailable("down", errors.New("dial")), fiber.StatusServiceUnavailable, "down"},
		{"validator", validationErr, fiber.StatusBadRequest, "Email is required"},
		{"fiber", fiber.NewError(fiber.StatusBadRequest, "Invalid request body"), fiber.StatusBadRequest, "Invalid request body"},
		{"record not found", gorm.ErrRecordNotFound, fiber.StatusNotFound, "Resource not found"},
		{"duplicate key", fmt.Errorf("update: %w", gorm.ErrDuplicatedKey), fiber.StatusConflict, "Resource already exists"},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message := Resolve(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("verify: %w", ErrOtpInvalid)
	assert.True(t, Is(err, KindOtp))
	assert.False(t, Is(err, KindAuth))
	assert.False(t, Is(errors.New("plain"), KindOtp))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("redis down")
	err := Unavailable("Verification is temporarily unavailable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "redis down")
}
