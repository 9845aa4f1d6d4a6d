package cmd

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/belak/authgate/pkg/auth"
	"github.com/belak/authgate/pkg/auth/jwt"
	"github.com/belak/authgate/pkg/auth/secret"
	"github.com/belak/authgate/pkg/config"
	"github.com/belak/authgate/pkg/debug"
	"github.com/belak/authgate/pkg/transport"
	transporthttp "github.com/belak/authgate/pkg/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authgate HTTP server",
	Long:  `Starts the HTTP server and blocks until SIGINT or SIGTERM, then drains in-flight requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug.Init(debug.Options{
			Categories: cfg.Logging.Debug,
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
		})
		logger := slog.Default()

		if cfg.UsesDefaultSecret() {
			logger.Warn("using the built-in placeholder secret; set auth.secret.token or AUTHGATE_AUTH_SECRET")
		}

		router, err := newRouter(cfg, logger)
		if err != nil {
			return err
		}

		srv := transporthttp.NewServer(router,
			transporthttp.WithAddr(cfg.Server.Addr()),
			transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
			transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
			transporthttp.WithLogger(logger),
		)

		logger.Info("authgate configured",
			slog.String("auth_type", cfg.Auth.Type),
			slog.Bool("metrics", cfg.Observability.Metrics.Enabled),
		)
		return srv.ListenAndServe()
	},
}

// newRouter wires the validator, error writer and metrics endpoint
// selected by c into the HTTP route table.
func newRouter(c *config.Config, logger *slog.Logger) (chi.Router, error) {
	v, err := buildValidator(c.Auth)
	if err != nil {
		return nil, err
	}

	var metricsPath string
	if c.Observability.Metrics.Enabled {
		metricsPath = c.Observability.Metrics.Path
	}

	return transporthttp.NewRouter(transporthttp.RouterConfig{
		Validator:   v,
		Errors:      &transport.ErrorWriter{Realm: c.Auth.Realm, Logger: logger},
		Logger:      logger,
		MetricsPath: metricsPath,
	}), nil
}

// buildValidator returns the validator for the configured auth type. The
// chain mode tries the shared secret first and falls back to JWT.
func buildValidator(c config.AuthConfig) (auth.Validator, error) {
	switch c.Type {
	case config.AuthTypeSecret, "":
		return newSecretValidator(c.Secret), nil
	case config.AuthTypeJWT:
		return newJWTValidator(c.JWT), nil
	case config.AuthTypeChain:
		return &auth.Chain{Validators: []auth.Validator{
			newSecretValidator(c.Secret),
			newJWTValidator(c.JWT),
		}}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", c.Type)
	}
}

func newSecretValidator(c config.SecretConfig) auth.Validator {
	return secret.New(c.Token, c.Name)
}

func newJWTValidator(c config.JWTConfig) auth.Validator {
	return jwt.New(jwt.Config{
		JWKSURL:   c.JWKSURL,
		Issuer:    c.Issuer,
		Audience:  c.Audience,
		NameClaim: c.NameClaim,
		CacheTTL:  c.CacheTTL,
	})
}
