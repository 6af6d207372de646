package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"purchaselog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeValidation       = "ValidationError"
	CodeDuplicateEmail   = "DuplicateEmail"
	CodeDuplicateUser    = "DuplicateUsername"
	CodeConflictOnInsert = "ConflictOnInsert"
	CodeUnknownUser      = "UnknownUser"
	CodeStorage          = "TransientStorageError"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{services.ErrValidation, fiber.StatusBadRequest, CodeValidation, "Validation failed"},
	{services.ErrDuplicateEmail, fiber.StatusBadRequest, CodeDuplicateEmail, "Email already registered"},
	{services.ErrDuplicateUsername, fiber.StatusBadRequest, CodeDuplicateUser, "Username already taken"},
	{services.ErrConflictOnInsert, fiber.StatusBadRequest, CodeConflictOnInsert, "User was registered concurrently"},
	{services.ErrUnknownUser, fiber.StatusBadRequest, CodeUnknownUser, "User does not exist"},
}

// respondError writes the JSON error body for an error returned by a service.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(fiber.Map{
				"message": m.message,
				"code":    m.code,
				"error":   err.Error(),
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Storage is unavailable, try again later",
		"code":    CodeStorage,
		"error":   err.Error(),
	})
}

// parseBody decodes and validates the request body into req. It writes the
// 400 response itself and reports whether the handler should continue.
func parseBody(c *fiber.Ctx, validate *validator.Validate, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"code":    CodeValidation,
			"error":   err.Error(),
		})
	}

	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"code":    CodeValidation,
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"code":    CodeValidation,
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// newValidator reports JSON field names instead of Go field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
