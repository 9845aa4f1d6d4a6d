package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	transporthttp "github.com/belak/authgate/pkg/transport/http"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the HTTP routes served with the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		router, err := newRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			return err
		}
		routes, err := transporthttp.Routes(router)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, rt := range routes {
			fmt.Fprintf(tw, "%s\t%s\n", rt.Method, rt.Pattern)
		}
		return tw.Flush()
	},
}
