// Package jwt provides a validator for RSA-signed JWT bearer tokens whose
// keys are published at a JWKS (JSON Web Key Set) endpoint.
//
// Every rejection, whether from a bad signature, an expired token, a wrong
// issuer or audience, a missing claim or an unreachable JWKS endpoint, is
// reported as auth.ErrUnauthorized. The cause is only visible in the "auth"
// debug log category.
package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/belak/authgate/pkg/auth"
	"github.com/belak/authgate/pkg/debug"
)

// Config holds the JWT validator configuration.
type Config struct {
	// JWKSURL is the URL of the JSON Web Key Set used for signature verification.
	JWKSURL string

	// Issuer is the expected iss claim. If empty, the issuer is not checked.
	Issuer string

	// Audience is the expected aud claim. If empty, the audience is not checked.
	Audience string

	// NameClaim is the claim used as the principal's display name. When the
	// claim is absent the sub claim is used. Default: "name".
	NameClaim string

	// CacheTTL controls how long fetched keys are trusted. Default: 1 hour.
	CacheTTL time.Duration

	// HTTPClient is used for JWKS fetches. If nil, a client with a
	// 10 second timeout is used.
	HTTPClient *http.Client
}

func (c *Config) applyDefaults() {
	if c.NameClaim == "" {
		c.NameClaim = "name"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Hour
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
}

var errMissingKID = errors.New("token header has no kid")

// Validator verifies JWTs and maps their claims to a principal.
type Validator struct {
	nameClaim string
	keys      *keySet
	parser    *jwtlib.Parser
}

// New creates a JWT validator with the given configuration.
func New(cfg Config) *Validator {
	cfg.applyDefaults()

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwtlib.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(cfg.Audience))
	}

	return &Validator{
		nameClaim: cfg.NameClaim,
		keys:      newKeySet(cfg.JWKSURL, cfg.HTTPClient, cfg.CacheTTL),
		parser:    jwtlib.NewParser(opts...),
	}
}

// Validate implements auth.Validator.
func (v *Validator) Validate(ctx context.Context, token string) (*auth.Principal, error) {
	claims := jwtlib.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errMissingKID
		}
		return v.keys.lookup(ctx, kid)
	})
	if err != nil {
		debug.Log("auth", "jwt rejected", "error", err)
		return nil, auth.ErrUnauthorized
	}

	subject, _ := claims.GetSubject()
	name := stringClaim(claims, v.nameClaim)
	if name == "" {
		name = subject
	}
	if name == "" {
		debug.Log("auth", "jwt rejected", "error", "no name or sub claim", "claim", v.nameClaim)
		return nil, auth.ErrUnauthorized
	}

	return &auth.Principal{Name: name, Subject: subject}, nil
}

// stringClaim returns claims[key] if it is a string, otherwise "".
func stringClaim(claims jwtlib.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
