package auth

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when a well-formed credential fails
// validation. It deliberately carries no detail about why.
var ErrUnauthorized = errors.New("unauthorized")

// Principal is an authenticated caller. It is immutable once returned by a
// Validator.
type Principal struct {
	// Name is the display name returned to the client.
	Name string `json:"name"`

	// Subject is the stable identifier behind the credential, when the
	// validator knows one. It is never serialized.
	Subject string `json:"-"`
}

// Validator turns a candidate token into a Principal.
//
// Implementations return ErrUnauthorized (possibly wrapped) for any
// credential they reject. Any other error is treated as an internal failure.
type Validator interface {
	Validate(ctx context.Context, token string) (*Principal, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, token string) (*Principal, error)

// Validate calls f(ctx, token).
func (f ValidatorFunc) Validate(ctx context.Context, token string) (*Principal, error) {
	return f(ctx, token)
}

// Chain tries validators in order. The first success wins; a rejection moves
// on to the next validator. If every validator rejects, the chain rejects.
// Errors other than ErrUnauthorized stop the chain.
type Chain struct {
	Validators []Validator
}

// Validate runs the chain.
func (c *Chain) Validate(ctx context.Context, token string) (*Principal, error) {
	for _, v := range c.Validators {
		p, err := v.Validate(ctx, token)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
	}
	return nil, ErrUnauthorized
}

// errNoPrincipal flags a validator that accepted a token without producing
// a usable identity.
var errNoPrincipal = errors.New("validator returned no principal")

// Authenticate extracts the candidate token from c and validates it with v.
// It returns exactly one of a Principal or an error.
func Authenticate(ctx context.Context, v Validator, c Credentials) (*Principal, error) {
	token, err := Extract(c)
	if err != nil {
		return nil, err
	}

	p, err := v.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Name == "" {
		return nil, errNoPrincipal
	}
	return p, nil
}
