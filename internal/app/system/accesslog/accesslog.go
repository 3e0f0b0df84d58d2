// Package accesslog writes one structured log line per HTTP request.
package accesslog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/system/network"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// DefaultExclude lists path prefixes polled by load balancers.
var DefaultExclude = []string{"/health", "/ready", "/readyz", "/livez"}

// Middleware logs method, path, status, size and latency of every request
// whose path does not start with one of exclude. Server errors log at Warn.
func Middleware(logger *zap.Logger, exclude ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range exclude {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_ip", network.ClientIP(r)),
				}
				if id := chimw.GetReqID(r.Context()); id != "" {
					fields = append(fields, zap.String("request_id", id))
				}
				if status >= http.StatusInternalServerError {
					logger.Warn("request", fields...)
					return
				}
				logger.Info("request", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
