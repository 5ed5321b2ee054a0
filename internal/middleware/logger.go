package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger attaches a request-scoped logger carrying the request id, taken from
// X-Request-ID when the caller sent one, and the trace id of the active span.
func Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		ctx := c.Request().Context()

		fields := log.With().Str("request_id", requestID)
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			fields = fields.Str("trace_id", sc.TraceID().String())
		}
		logger := fields.Logger()
		ctx = logger.WithContext(ctx)

		c.SetRequest(c.Request().WithContext(ctx))

		err := next(c)
		if err != nil {
			// let echo write the response so the logged status is the real one
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()

		var event *zerolog.Event
		switch {
		case res.Status >= 500:
			event = log.Ctx(req.Context()).Error().Err(err)
		case res.Status >= 400:
			event = log.Ctx(req.Context()).Warn()
		default:
			event = log.Ctx(req.Context()).Info()
		}

		event.
			Str("method", req.Method).
			Str("endpoint", c.Path()).
			Int("status", res.Status).
			Int64("latency", time.Since(start).Milliseconds()).
			Msg("Request processed")

		return nil
	}
}
