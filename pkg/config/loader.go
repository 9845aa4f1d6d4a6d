package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/belak/authgate/pkg/debug"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "AUTHGATE_CONFIG"

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, AUTHGATE_CONFIG env, ./authgate.yaml, /etc/authgate/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Placeholder secret fallback
//  6. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if cfg.Auth.Secret.Token == "" && cfg.Auth.Secret.TokenFile == "" {
		cfg.Auth.Secret.Token = DefaultSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. AUTHGATE_CONFIG environment variable
// 3. ./authgate.yaml in the current directory
// 4. /etc/authgate/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath
	}

	for _, path := range []string{"authgate.yaml", "/etc/authgate/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadYAMLFile parses a YAML file into cfg. Fields not present in the file
// keep their current values; unknown keys are an error.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnvOverrides maps AUTHGATE_* environment variables onto cfg.
// Empty variables are ignored. Malformed numbers and booleans are errors.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"AUTHGATE_HOST":             &cfg.Server.Host,
		"AUTHGATE_AUTH_TYPE":        &cfg.Auth.Type,
		"AUTHGATE_AUTH_REALM":       &cfg.Auth.Realm,
		"AUTHGATE_AUTH_SECRET":      &cfg.Auth.Secret.Token,
		"AUTHGATE_AUTH_SECRET_FILE": &cfg.Auth.Secret.TokenFile,
		"AUTHGATE_AUTH_NAME":        &cfg.Auth.Secret.Name,
		"AUTHGATE_JWKS_URL":         &cfg.Auth.JWT.JWKSURL,
		"AUTHGATE_JWT_ISSUER":       &cfg.Auth.JWT.Issuer,
		"AUTHGATE_JWT_AUDIENCE":     &cfg.Auth.JWT.Audience,
		"AUTHGATE_JWT_NAME_CLAIM":   &cfg.Auth.JWT.NameClaim,
		"AUTHGATE_LOG_FORMAT":       &cfg.Logging.Format,
		"AUTHGATE_METRICS_PATH":     &cfg.Observability.Metrics.Path,
		debug.EnvLevel:              &cfg.Logging.Level,
		debug.EnvCategories:         &cfg.Logging.Debug,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	var errs []error
	if v := os.Getenv("AUTHGATE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTHGATE_PORT: %w", err))
		} else {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AUTHGATE_METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTHGATE_METRICS_ENABLED: %w", err))
		} else {
			cfg.Observability.Metrics.Enabled = enabled
		}
	}
	return errors.Join(errs...)
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. An explicit value wins over its file reference.
func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.Secret.TokenFile != "" && cfg.Auth.Secret.Token == "" {
		val, err := readSecretFile(cfg.Auth.Secret.TokenFile)
		if err != nil {
			return fmt.Errorf("auth.secret.token_file: %w", err)
		}
		cfg.Auth.Secret.Token = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
