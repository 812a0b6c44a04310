package mediaauth

import (
	"net/http"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// RequestLogger tags every request with a generated ID and logs it.
// The ID is echoed back in the X-Request-Id response header.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := ""
			if id, err := uuid.NewV4(); err == nil {
				requestID = id.String()
				w.Header().Set("X-Request-Id", requestID)
			}

			logger.Debug(
				"request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)

			next.ServeHTTP(w, r)
		})
	}
}
