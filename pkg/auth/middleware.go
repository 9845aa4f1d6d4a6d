package auth

import (
	"errors"
	"net/http"

	"github.com/belak/authgate/pkg/debug"
	"github.com/belak/authgate/pkg/observability"
)

// ErrorWriter renders a failure as an HTTP response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware authenticates every request with v. On success the principal
// is stored in the request context; on failure the error is handed to
// writeError and the wrapped handler is not called.
func Middleware(v Validator, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := Authenticate(r.Context(), v, CredentialsFromRequest(r))
			observability.AuthOutcomesTotal.WithLabelValues(outcome(err)).Inc()

			if err != nil {
				debug.Log("auth", "authentication rejected",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				writeError(w, r, err)
				return
			}

			debug.Log("auth", "authentication succeeded",
				"name", principal.Name,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), principal)))
		})
	}
}

// outcome is the metrics label for an authentication result.
func outcome(err error) string {
	var extractErr *ExtractionError
	switch {
	case err == nil:
		return "authorized"
	case errors.As(err, &extractErr):
		return "invalid_token"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
