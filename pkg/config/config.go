// Package config provides unified configuration for the authgate server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (AUTHGATE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"net"
	"strconv"
	"time"
)

// Authentication modes accepted by auth.type.
const (
	AuthTypeSecret = "secret"
	AuthTypeJWT    = "jwt"
	AuthTypeChain  = "chain"
)

// DefaultSecret and DefaultName are the placeholder credential and display
// name used when no secret is configured.
const (
	DefaultSecret = "hello world"
	DefaultName   = "belak"
)

// Config holds all configuration for the authgate server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`             // default: "127.0.0.1"
	Port            int           `yaml:"port"`             // default: 3030
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 10s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// AuthConfig selects and configures the credential validator.
type AuthConfig struct {
	Type   string       `yaml:"type"`  // "secret", "jwt" or "chain", default: "secret"
	Realm  string       `yaml:"realm"` // WWW-Authenticate realm, default: "authgate"
	Secret SecretConfig `yaml:"secret"`
	JWT    JWTConfig    `yaml:"jwt"`
}

// SecretConfig configures the shared-secret validator.
type SecretConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"` // _file variant for token
	Name      string `yaml:"name"`       // default: "belak"
}

// JWTConfig configures the JWKS-backed JWT validator.
type JWTConfig struct {
	JWKSURL   string        `yaml:"jwks_url"`
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	NameClaim string        `yaml:"name_claim"` // default: "name"
	CacheTTL  time.Duration `yaml:"cache_ttl"`  // default: 1h
}

// LoggingConfig controls the process logger and debug categories.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // TRACE, DEBUG, INFO, WARN, ERROR; default: INFO
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
//
// The secret token is left empty here; Load falls back to DefaultSecret only
// when neither auth.secret.token nor auth.secret.token_file is configured.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            3030,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Type:  AuthTypeSecret,
			Realm: "authgate",
			Secret: SecretConfig{
				Name: DefaultName,
			},
			JWT: JWTConfig{
				NameClaim: "name",
				CacheTTL:  time.Hour,
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// UsesDefaultSecret reports whether the placeholder secret is in effect.
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.Type != AuthTypeJWT && c.Auth.Secret.Token == DefaultSecret
}

// Redacted returns a copy safe to print: secret values are masked, file
// references are kept.
func (c Config) Redacted() Config {
	if c.Auth.Secret.Token != "" {
		c.Auth.Secret.Token = "REDACTED"
	}
	return c
}
