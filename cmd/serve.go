package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kfreiman/piigate/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmdConf, err := loadCmdConfig()
		if err != nil {
			return err
		}

		cfg, err := server.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load server config: %w", err)
		}
		if cfg.LogDebug {
			cmdConf.Level = "debug"
		}
		logger := createLogger(cmdConf)

		srv, err := server.NewServer(cfg, logger)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create server",
				"error", err,
			)
			return err
		}
		defer srv.Close()

		logger.InfoContext(ctx, "piigate starting",
			"port", cfg.Port,
			"storage_backend", cfg.StorageBackend,
			"storage_path", cfg.StoragePath,
			"message_ttl", cfg.MessageTTL.String(),
			"endpoints", []string{"/api/v1", "/mcp", "/health/live", "/health/ready", "/metrics"},
		)

		if err := srv.Run(ctx); err != nil {
			logger.ErrorContext(ctx, "server stopped with error",
				"error", err,
			)
			return err
		}
		return nil
	},
}

// envCmd prints the environment variables understood by serve
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Describe configuration environment variables",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), server.Usage())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(envCmd)
}
