package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

const localLogger = "logger"

// requestObserver registra métricas por petición (telemetry.Metrics).
type requestObserver interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// RequestLogger registra cada petición con zerolog y deja un sublogger con el
// request id en c.Locals para los handlers. metrics puede ser nil.
func RequestLogger(log zerolog.Logger, metrics requestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		l := log.With().Str("request_id", reqID).Logger()
		c.Locals(localLogger, l)

		err := c.Next()
		if err != nil {
			// el ErrorHandler de la app escribe la respuesta; aquí solo se registra
			_ = c.App().ErrorHandler(c, err)
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		if metrics != nil {
			metrics.ObserveRequest(c.Method(), route, status, elapsed)
		}

		ev := l.Info()
		if status >= fiber.StatusInternalServerError {
			ev = l.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = l.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("request")
		return nil
	}
}

// requestLogger devuelve el logger de la petición o uno mudo si no hay middleware.
func requestLogger(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(localLogger).(zerolog.Logger); ok {
		return &l
	}
	nop := zerolog.Nop()
	return &nop
}
