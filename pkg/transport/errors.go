package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/belak/authgate/pkg/api"
	"github.com/belak/authgate/pkg/auth"
)

// DefaultRealm is used in WWW-Authenticate challenges when no realm is
// configured.
const DefaultRealm = "authgate"

// ErrorFromErr classifies err into the client-facing error it maps to.
// Wrapped errors classify like the error they wrap. Anything unrecognized
// becomes an internal error whose message carries no detail.
func ErrorFromErr(err error) *api.APIError {
	var (
		apiErr     *api.APIError
		extractErr *auth.ExtractionError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, api.ErrNotFound):
		return api.NewNotFoundError()
	case errors.As(err, &extractErr):
		return api.NewInvalidTokenError(extractErr.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		return api.NewUnauthorizedError()
	case errors.Is(err, api.ErrMethodNotAllowed):
		return api.NewMethodNotAllowedError()
	default:
		return api.NewInternalError()
	}
}

// ErrorWriter renders errors as JSON responses of the form
// {"code": <status>, "message": "<text>"}.
type ErrorWriter struct {
	// Realm is advertised in the WWW-Authenticate header of 401 responses.
	Realm string

	// Logger receives internal errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// Write maps err and writes the response. Only internal errors are logged;
// client errors are an expected outcome and are not.
func (ew *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := ErrorFromErr(err)

	if apiErr.Kind == api.ErrorKindInternal {
		logger := ew.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "internal error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
	}

	if apiErr.Kind == api.ErrorKindUnauthorized {
		realm := ew.Realm
		if realm == "" {
			realm = DefaultRealm
		}
		w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer realm=%q", realm))
	}

	WriteAPIError(w, apiErr)
}

// WriteError writes err with the default realm and logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	(&ErrorWriter{}).Write(w, r, err)
}

// WriteAPIError writes an already classified error. It sets the
// Content-Type header and the HTTP status code from apiErr.Code.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(apiErr.Code)
	_ = json.NewEncoder(w).Encode(apiErr)
}
