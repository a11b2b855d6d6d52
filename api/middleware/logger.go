// Package middleware provides HTTP middleware for the popgen API.
package middleware

import (
	"log"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Logger logs one line per request with the standard logger.
func Logger(next http.Handler) http.Handler {
	return RequestLogger(log.Default())(next)
}

// RequestLogger returns middleware that logs method, path, status, size,
// duration and request id to l.
func RequestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				l.Printf("[%s] %s %s %d %dB %s",
					chimiddleware.GetReqID(r.Context()),
					r.Method, r.URL.Path, status, ww.BytesWritten(),
					time.Since(start).Round(time.Microsecond))
			}()
			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
