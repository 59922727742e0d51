package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

// Recover turns a handler panic into a 500 and logs the stack.
func Recover(log logger.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error(r.Context(), "http handler panic",
					"panic", rec,
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"stack", string(debug.Stack()),
				)
				http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`,
					http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
