package middle

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/mstgnz/eventpay/infra/logger"
	"github.com/mstgnz/eventpay/infra/response"
)

// PanicRecoveryMiddleware handles panics and converts them to HTTP 500 errors
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
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

				cl := logger.FromContext(r.Context())
				if logger.GetRequestID(r.Context()) == "" {
					cl.SetRequestID(r.Header.Get(RequestIDHeader))
				}
				cl.AddField("method", r.Method).
					AddField("url", r.URL.String()).
					AddField("stack", string(debug.Stack())).
					Error("Panic recovered", fmt.Errorf("%v", rec))

				// Set headers to prevent caching of error response
				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
				w.Header().Set("Pragma", "no-cache")
				w.Header().Set("Expires", "0")

				response.Error(w, http.StatusInternalServerError, "Internal server error", nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// PanicRecoveryWithCustomHandler allows custom panic handling
func PanicRecoveryWithCustomHandler(handler func(http.ResponseWriter, *http.Request, any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					handler(w, r, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
