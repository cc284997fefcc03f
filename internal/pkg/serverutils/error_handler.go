package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"scoutgpt-be/internal/apperrors"
)

// ErrorHandlerMiddleware converts service errors into JSON responses.
// Schema and validation failures map to 400, upstream provider outages
// to 503, everything unrecognized to 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var validationErr *ValidationError
		var configErr *apperrors.ConfigurationError
		var toolErr *apperrors.ToolInputInvalidError
		var dimErr *apperrors.DimensionMismatchError

		switch {
		case errors.As(err, &validationErr):
			status = fiber.StatusBadRequest
			message = validationErr.Message
		case errors.As(err, &configErr):
			status = fiber.StatusBadRequest
			message = configErr.Error()
		case errors.As(err, &toolErr):
			status = fiber.StatusBadRequest
			message = toolErr.Error()
		case errors.As(err, &dimErr):
			status = fiber.StatusUnprocessableEntity
			message = dimErr.Error()
		case apperrors.IsEmbeddingUnavailable(err):
			status = fiber.StatusServiceUnavailable
			message = "Embedding provider unavailable"
		case errors.Is(err, apperrors.ErrAssistantUnavailable):
			status = fiber.StatusServiceUnavailable
			message = "Assistant unavailable"
		default:
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
				message = fiberErr.Message
			}
		}

		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}
