package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"authdemo/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	cfg    *utils.Config

	serveAddr string
)

var rootCmd = &cobra.Command{
	Use:           "authdemo",
	Short:         "Cookie session login demo",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables
		var (
			loadedDotenv bool
			err          error
		)
		cfg, loadedDotenv, err = utils.LoadConfig()
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debug("configuration loaded",
			zap.String("environment", cfg.Environment),
			zap.Bool("dotenv", loadedDotenv))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Addr()
		if serveAddr != "" {
			addr = serveAddr
		}
		return runServer(cmd.Context(), cfg, logger, addr)
	},
}

var decodeSessionCmd = &cobra.Command{
	Use:   "decode-session [cookie-value]",
	Short: "Print the identity carried by a session cookie value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := utils.NewSessionCodec(cfg.SessionSecret)
		if err != nil {
			return err
		}
		identity, err := codec.Decode(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(identity)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to :$PORT)")
	rootCmd.AddCommand(serveCmd, decodeSessionCmd)
}

func newLogger(cfg *utils.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
