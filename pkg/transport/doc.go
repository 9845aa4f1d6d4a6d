// Package transport holds the HTTP-facing pieces shared by every route:
// the error mapper and the cross-cutting middleware.
//
// # Error Mapping
//
// [ErrorFromErr] classifies any error into an [api.APIError]:
//
//	api.ErrNotFound          404 not found
//	*auth.ExtractionError    400 invalid auth token: <reason>
//	auth.ErrUnauthorized     401 unauthorized
//	api.ErrMethodNotAllowed  405 method not allowed
//	anything else            500 internal error
//
// [ErrorWriter] writes the result as {"code": ..., "message": ...}, adds a
// Bearer challenge to 401 responses and logs only the internal case.
//
// # Middleware
//
// Built-in middleware provides panic recovery through the error mapper,
// request ID assignment (X-Request-ID) and structured access logging via
// log/slog. All of it has the func(http.Handler) http.Handler shape used by
// chi.
package transport
