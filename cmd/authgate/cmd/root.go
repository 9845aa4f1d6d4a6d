package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/belak/authgate/pkg/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "Bearer-token gate for a protected HTTP route",
	Long: `authgate accepts a bearer token from the Authorization header or the
token query parameter, validates it, and answers the protected route with the
authenticated principal. Every failure is returned as a JSON error body.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file (env: AUTHGATE_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(routesCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
