package handlers

import (
	"inventorycart/internal/apperror"
	"inventorycart/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the single error body shape for every endpoint.
type ErrorResponse struct {
	Kind    apperror.Kind `json:"kind"`
	Message string        `json:"message"`
}

// respondError logs err and writes it with the status of its kind.
func respondError(c *fiber.Ctx, op string, err error) error {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	logger := logging.FromContext(c.UserContext())
	ev := logger.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).Str("op", op).Int("status", status).Msg("request failed")

	message := apperror.MessageOf(err)
	if kind == apperror.KindStorage {
		message = "internal storage error"
	}
	return c.Status(status).JSON(ErrorResponse{Kind: kind, Message: message})
}

// ErrorHandler is the Fiber error handler; it keeps framework errors such as
// unknown routes in the same body shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		kind := apperror.KindStorage
		switch {
		case fe.Code == fiber.StatusNotFound:
			kind = apperror.KindNotFound
		case fe.Code < fiber.StatusInternalServerError:
			kind = apperror.KindInvalid
		}
		return c.Status(fe.Code).JSON(ErrorResponse{Kind: kind, Message: fe.Message})
	}
	return respondError(c, "unhandled", err)
}
