package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestLogger stores a request-scoped zerolog logger in the user context and
// logs one line per completed request, leveled by status.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(fiber.HeaderXRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set(fiber.HeaderXRequestID, rid)

		logger := base.With().
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("remote_ip", c.IP()).
			Logger()
		c.SetUserContext(logger.WithContext(c.UserContext()))

		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app's error handler write the response so the status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		dur := time.Since(start)

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = logger.Error()
		case status >= fiber.StatusBadRequest:
			ev = logger.Warn()
		default:
			ev = logger.Info()
		}
		ev.Int("status", status).Dur("duration", dur).Int("bytes", len(c.Response().Body())).Msg("request completed")
		return nil
	}
}
