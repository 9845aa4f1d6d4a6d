package auth

import (
	"net/http"
	"strings"
)

const (
	// HeaderName is the request header carrying a bearer credential.
	HeaderName = "Authorization"

	// QueryParam is the query parameter carrying a bearer credential.
	QueryParam = "token"

	bearerScheme = "Bearer"
)

// Extraction failure reasons. They are part of the client-facing message.
const (
	ReasonInvalidScheme  = "invalid scheme"
	ReasonMissingToken   = "missing token"
	ReasonMultipleTokens = "multiple tokens specified"
	ReasonNoToken        = "no token specified"
)

// ExtractionError reports a malformed or ambiguous credential source.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "invalid auth token: " + e.Reason
}

// Credentials holds the two optional raw credential sources of a request.
// The Has fields record presence; an empty value may still be present.
type Credentials struct {
	Header    string
	HasHeader bool
	Query     string
	HasQuery  bool
}

// CredentialsFromRequest collects the Authorization header and the token
// query parameter. Only the first value of each is considered.
func CredentialsFromRequest(r *http.Request) Credentials {
	var c Credentials
	if values := r.Header.Values(HeaderName); len(values) > 0 {
		c.Header, c.HasHeader = values[0], true
	}
	if query := r.URL.Query(); query.Has(QueryParam) {
		c.Query, c.HasQuery = query.Get(QueryParam), true
	}
	return c
}

// Extract resolves the credential sources into a single candidate token.
//
// A present header always decides first: a malformed header is rejected even
// when a query token is also supplied, and a well-formed header together with
// a query token is rejected as ambiguous. Failures are *ExtractionError.
func Extract(c Credentials) (string, error) {
	if c.HasHeader {
		token, err := parseBearer(c.Header)
		if err != nil {
			return "", err
		}
		if c.HasQuery {
			return "", &ExtractionError{Reason: ReasonMultipleTokens}
		}
		return token, nil
	}

	if c.HasQuery {
		if c.Query == "" {
			return "", &ExtractionError{Reason: ReasonMissingToken}
		}
		return c.Query, nil
	}

	return "", &ExtractionError{Reason: ReasonNoToken}
}

// parseBearer splits the header once on the first space. The remainder is
// the token verbatim, so "Bearer hello world" yields "hello world".
func parseBearer(header string) (string, error) {
	scheme, token, found := strings.Cut(header, " ")
	if found && scheme != bearerScheme {
		return "", &ExtractionError{Reason: ReasonInvalidScheme}
	}
	if !found || token == "" {
		return "", &ExtractionError{Reason: ReasonMissingToken}
	}
	return token, nil
}
