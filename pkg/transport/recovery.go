package transport

import (
	"fmt"
	"net/http"
	"runtime/debug"

	authdebug "github.com/belak/authgate/pkg/debug"
	"github.com/belak/authgate/pkg/observability"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to internal error responses through errs. The panic value
// reaches the server log, never the client. The server continues to accept
// new requests after a panic is recovered.
func Recovery(errs *ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// net/http uses this sentinel to abort a response silently.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				observability.PanicsRecoveredTotal.Inc()
				authdebug.Trace("transport", "panic stack", "stack", string(debug.Stack()))
				errs.Write(w, r, fmt.Errorf("panic: %v", rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
