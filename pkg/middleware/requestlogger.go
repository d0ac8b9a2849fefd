package middleware

import (
	"log/slog"
	"net/http"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, retrievable
// with logger.FromContext. The logger carries the correlation id set by
// RequestLogging, the user relayed by TokenRelay, the active trace and the
// request method, so mount it after those middlewares.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if user := UserIDFromContext(ctx); user != "" {
				ctx = logger.WithUserID(ctx, user)
			}

			scoped := logger.WithContext(ctx, base).With(slog.String("method", r.Method))
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, scoped)))
		})
	}
}
