package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"invitationadmin/internal/lib/sl"
)

// wrap returns a chi response writer and a func reporting the final status,
// treating an untouched response as 200.
func wrap(w http.ResponseWriter, r *http.Request) (chimw.WrapResponseWriter, func() int) {
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	return ww, func() int {
		if s := ww.Status(); s != 0 {
			return s
		}
		return http.StatusOK
	}
}

// Logging emits one access line per request. 5xx responses log at error level,
// 4xx at warn. Bodies are never logged.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(sl.Module("http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww, status := wrap(w, r)
			next.ServeHTTP(ww, r)

			code := status()
			level := slog.LevelInfo
			switch {
			case code >= http.StatusInternalServerError:
				level = slog.LevelError
			case code >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", code),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("remote_ip", r.RemoteAddr),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
