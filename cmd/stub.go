package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/gapscan/gapscan/internal/stubserver"
)

// stubCmd serves an in-memory assessment service with the demo catalog,
// for local development and demos without a tenant backend.
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a local stub assessment service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		log := slog.New(slog.NewTextHandler(os.Stderr, nil))
		srv := stubserver.New(log)

		log.Info("stub assessment service listening", "addr", addr)
		if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
			return fmt.Errorf("stub server: %w", err)
		}
		return nil
	},
}

func init() {
	stubCmd.Flags().String("addr", ":8787", "Listen address")
}
