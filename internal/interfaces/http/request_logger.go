package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/purchases-api/pkg/logger"
)

// RequestLogger registra una línea por petición. Debe ir después de requestid.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// el ErrorHandler de fiber todavía no corrió; fiber.Error trae el status real
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		rl := log.Ctx(c.UserContext())
		ev := rl.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = rl.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = rl.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", requestID(c)).
			Msg("request")
		return err
	}
}
