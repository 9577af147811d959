package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"petshop/internal/apperrors"
	"petshop/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindNotFound:          fiber.StatusNotFound,
	apperrors.KindUnauthorized:      fiber.StatusUnauthorized,
	apperrors.KindForbidden:         fiber.StatusForbidden,
	apperrors.KindInsufficientStock: fiber.StatusConflict,
	apperrors.KindEmptyCart:         fiber.StatusBadRequest,
	apperrors.KindInvalidState:      fiber.StatusConflict,
	apperrors.KindInvalidInput:      fiber.StatusBadRequest,
	apperrors.KindConflict:          fiber.StatusConflict,
}

// respondError writes err with the status of its kind. Unclassified errors
// are logged and hidden behind a 500.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, message string) error {
	kind := apperrors.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.Error(message, zap.Error(err), zap.String("method", c.Method()), zap.String("path", c.Path()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"code":    string(apperrors.KindInternal),
		})
	}
	logger.Debug(message, zap.Error(err), zap.String("path", c.Path()))
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"code":    string(kind),
		"error":   err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"code":    string(apperrors.KindInvalidInput),
		"error":   err.Error(),
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"code":    string(apperrors.KindInvalidInput),
		"errors":  errorMessages,
	})
}

// bind decodes and validates the request body into dst. When ok is false
// the error response has already been written.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, badBody(c, err)
	}
	if err := validate.Struct(dst); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidInput("invalid %s %q", name, c.Params(name))
	}
	return uint(id), nil
}

func currentUser(c *fiber.Ctx) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperrors.Unauthorized("no authenticated user")
	}
	return id, nil
}
