package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler is the app-wide Fiber error handler. Validation errors become
// 400 with the offending field, *fiber.Error keeps its code and message, and
// anything else is logged and reported as a bare 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var verr *weather.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody{
				Message: verr.Message,
				Field:   verr.Field,
			})
		}

		code := fiber.StatusInternalServerError
		msg := "Internal Server Error"

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			code = ferr.Code
			msg = ferr.Message
		} else {
			log.Error("unhandled request error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(code).JSON(errorBody{Message: msg})
	}
}
