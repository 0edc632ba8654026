package exception

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"messenger-api/dto/res"
)

// Resolve maps any error to the status code and message sent to the client.
func Resolve(err error) (int, string) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode(), appErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return fiber.StatusBadRequest, validationMessage(validationErrs[0])
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound, "Resource not found"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fiber.StatusConflict, "Resource already exists"
	}

	return fiber.StatusInternalServerError, "Internal Server Error"
}

// StatusOf is Resolve without the message.
func StatusOf(err error) int {
	code, _ := Resolve(err)
	return code
}

// ErrorHandler is installed as the fiber app error handler; every error
// returned by a handler or middleware ends up here.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code, message := Resolve(err)

		entry := log.WithError(err).WithFields(logrus.Fields{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"status": code,
		})
		if code >= fiber.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Warn("Request rejected")
		}

		return ctx.Status(code).JSON(res.ErrorResponse{
			Message:    message,
			StatusCode: code,
		})
	}
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", fieldErr.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fieldErr.Field())
	case "len":
		return fmt.Sprintf("%s must be %s characters", fieldErr.Field(), fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldErr.Field(), fieldErr.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", fieldErr.Field())
	default:
		return fmt.Sprintf("%s is invalid", fieldErr.Field())
	}
}
