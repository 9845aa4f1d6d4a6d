// Package api defines the wire types shared by the authgate transport and
// its callers.
//
// The package performs no I/O. Types marshal to the JSON bodies the gate
// returns to clients:
//   - [APIError]: every failure response, serialized as {"code", "message"}
//   - [ErrorKind]: stable error categories used in logs and metrics
//
// [ErrNotFound] and [ErrMethodNotAllowed] are the routing failures the router
// hands to the error mapper.
package api
