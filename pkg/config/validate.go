package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/belak/authgate/pkg/debug"
)

// reservedPaths are served by the router and cannot host metrics.
var reservedPaths = []string{"/example", "/healthz"}

// Validate checks the configuration for required fields and valid values.
// All problems are reported together, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Host == "" {
		errs = append(errs, fmt.Errorf("server.host is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be > 0, got %v", c.Server.ReadTimeout))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be > 0, got %v", c.Server.WriteTimeout))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be > 0, got %v", c.Server.ShutdownTimeout))
	}

	switch c.Auth.Type {
	case AuthTypeSecret:
		errs = append(errs, c.Auth.Secret.validate()...)
	case AuthTypeJWT:
		errs = append(errs, c.Auth.JWT.validate()...)
	case AuthTypeChain:
		errs = append(errs, c.Auth.Secret.validate()...)
		errs = append(errs, c.Auth.JWT.validate()...)
	default:
		errs = append(errs, fmt.Errorf("auth.type must be %q, %q or %q, got %q",
			AuthTypeSecret, AuthTypeJWT, AuthTypeChain, c.Auth.Type))
	}
	if strings.ContainsAny(c.Auth.Realm, "\"\\") {
		errs = append(errs, fmt.Errorf("auth.realm must not contain quotes or backslashes"))
	}

	if !debug.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled {
		p := c.Observability.Metrics.Path
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", p))
		}
		for _, reserved := range reservedPaths {
			if p == reserved {
				errs = append(errs, fmt.Errorf("observability.metrics.path %q collides with a built-in route", p))
			}
		}
	}

	return errors.Join(errs...)
}

func (s SecretConfig) validate() []error {
	var errs []error
	if s.Token == "" {
		errs = append(errs, fmt.Errorf("auth.secret.token or auth.secret.token_file is required"))
	}
	if s.Name == "" {
		errs = append(errs, fmt.Errorf("auth.secret.name is required"))
	}
	return errs
}

func (j JWTConfig) validate() []error {
	var errs []error
	if j.JWKSURL == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.jwks_url is required"))
	} else if u, err := url.Parse(j.JWKSURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.jwks_url must be an absolute http(s) URL, got %q", j.JWKSURL))
	}
	if j.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.jwt.cache_ttl must be > 0, got %v", j.CacheTTL))
	}
	return errs
}
