// Package auth provides the credential gate for authgate.
//
// A request passes through two steps. [Extract] resolves the Authorization
// header and the token query parameter into one candidate token, rejecting
// malformed or ambiguous input with an [*ExtractionError]. A [Validator] then
// turns the candidate into a [Principal] or rejects it with [ErrUnauthorized].
// Rejections never say why a token was refused.
//
// Validators are pluggable: package secret compares against a shared secret,
// package jwt verifies signed tokens against a JWKS endpoint, and [Chain]
// combines several.
//
// The gate runs as HTTP middleware; failures are rendered by a caller-supplied
// [ErrorWriter], keeping this package free of response formatting.
package auth
