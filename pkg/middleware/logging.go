package middleware

import (
	"log/slog"
	"time"

	"github.com/marycampus/advisor/pkg/server"
)

// Logging returns middleware that writes one structured line per
// route resolution: debug on success, error on failure. A nil logger
// uses slog.Default().
func Logging(logger *slog.Logger) server.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return server.MiddlewareFunc(func(ctx server.Ctx, next func() error) error {
		start := time.Now()

		err := next()

		attrs := []any{
			slog.String("route", routeLabel(ctx)),
			slog.String("path", ctx.Path()),
			slog.String("mode", ctx.Mode().String()),
			slog.Duration("elapsed", time.Since(start)),
		}
		if sess := ctx.Session(); sess != nil {
			attrs = append(attrs, slog.String("session", sess.ID))
		}
		if err != nil {
			logger.Error("route resolution failed", append(attrs, slog.Any("error", err))...)
		} else {
			logger.Debug("route resolved", attrs...)
		}
		return err
	})
}
