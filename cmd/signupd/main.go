package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shift-signup-backend/config"
	"shift-signup-backend/internal/logging"
)

// app holds what every subcommand needs.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

var (
	configPath string
	a          = &app{}
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "signupd",
		Short:         "Shift signup and eligibility service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to the YAML configuration")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "signupd:", err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	log, err := logging.New(cfg.Log.Env)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	log.Info("configuration loaded", zap.String("path", configPath))
	return nil
}
