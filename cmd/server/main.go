// Command sparko runs the Sparko matchmaking API.
//
//	sparko serve            start the HTTP server (the default)
//	sparko seed             create the demo accounts
//
// Configuration comes from an optional YAML file, a .env file and the
// environment, in that order.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/sparko/internal/config"
	"github.com/sakif/sparko/internal/seed"
	"github.com/sakif/sparko/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sparko",
	Short: "Role-based matchmaking for founders, investors and partners",
	Long: `Sparko pairs entrepreneurs with investors and partners with partners.

Users discover profiles of the role they are looking for, swipe on them, and
a mutual like becomes a match.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo accounts with complete profiles",
	Long: `Create one demo account per entry in the built-in data set, each with a
complete profile for its role. Every account uses the password "` + seed.DemoPassword + `".

Accounts that already exist are left alone, so seeding twice is safe.`,
	RunE: runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("SPARKO_CONFIG"),
		"YAML config file (or set SPARKO_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration and builds the logger
// it describes.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Log.NewLogger(os.Stdout), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	// Run blocks until Ctrl+C or SIGTERM, then drains in-flight requests.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := server.OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	svcs, err := server.NewServices(cfg, db, logger)
	if err != nil {
		return err
	}

	n, err := seed.New(svcs.Auth, svcs.Profiles, logger).Run(cmd.Context(), seed.Accounts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %d of %d demo accounts in %s\n",
		n, len(seed.Accounts), cfg.Database.Path)
	return nil
}
