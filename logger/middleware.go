package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Middleware writes one access-log entry per request.
func Middleware(l *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := l.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"durationMs": time.Since(start).Milliseconds(),
				"remote":     r.RemoteAddr,
				"requestId":  middleware.GetReqID(r.Context()),
			})
			switch {
			case status >= 500:
				entry.Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}
