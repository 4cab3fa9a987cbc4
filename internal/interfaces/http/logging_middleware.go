package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/pkg/logger"
)

// RequestLogger registra método, ruta, status y duración de cada petición.
// Los 5xx salen en nivel error con el detalle guardado por writeError.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// Deja que el ErrorHandler de Fiber escriba la respuesta antes de leer el status.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		if reqID, ok := c.Locals("requestid").(string); ok && reqID != "" {
			ev = ev.Str("request_id", reqID)
		}
		if detail, ok := c.Locals(LocalError).(string); ok {
			ev = ev.Str("error", detail)
		} else if chainErr != nil {
			ev = ev.Err(chainErr)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return nil
	}
}
