package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gapscan/gapscan/internal/api"
	"github.com/gapscan/gapscan/internal/app"
	"github.com/gapscan/gapscan/internal/config"
	"github.com/gapscan/gapscan/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "gapscan",
	Short: "Adaptive compliance-maturity assessments in the terminal",
	Long:  "Gapscan — terminal client for adaptive compliance-maturity assessments: answer, defer, flag, attach evidence attestations, and explore domains beyond the adaptive path.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides GAPSCAN_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file")
	rootCmd.PersistentFlags().String("server", "", "Assessment service base URL (overrides config)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// runApp loads config, opens the local store, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	client := api.New(cfg.Server.BaseURL, cfg.Identity.TenantID, cfg.Identity.UserID).
		WithRetry(api.DefaultRetryConfig())

	return app.Run(app.Options{
		Client: client,
		Store:  st,
		Config: cfg,
	})
}

// loadConfig resolves the config path (flag, then env, then XDG default)
// and applies the --server override.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Server.BaseURL = server
	}
	return cfg, nil
}

// openStore opens the SQLite store at --db, or the default XDG path.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path != "" {
		if err := store.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("prepare DB dir: %w", err)
		}
	} else {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
