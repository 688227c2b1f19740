package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"doc-chat-be/internal/pkg/apperror"
)

// ErrorHandlerMiddleware maps errors escaping a handler to the correct HTTP
// category: client-caused application errors to 400, capability failures to
// 502, anything unclassified to 500. Internal detail never reaches the body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.As(err); ok {
			status := fiber.StatusBadGateway
			if appErr.Kind.ClientCaused() {
				status = fiber.StatusBadRequest
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
