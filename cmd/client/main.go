// Naval Combat Client - Main Entry Point
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"naval-combat/internal/client"
	"naval-combat/internal/config"
	"naval-combat/pkg/logger"
)

var version = "1.0.0"

func main() {
	cfg, err := config.LoadClientConfig(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if err := initLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logger.Client.Info("Starting Naval Combat Client v%s", version)
	logger.Client.Info("Connecting to server: %s", cfg.Server)

	gameClient := client.NewClient(cfg.Server, os.Stdin, color.Output)

	setupGracefulShutdown(gameClient)

	if err := gameClient.Start(); err != nil {
		logger.Client.Error("Client failed: %v", err)
		os.Exit(1)
	}

	gameClient.Close()
	logger.Client.Info("Client shutting down gracefully")
}

// initLogging sets up the logging system
func initLogging(cfg *config.ClientConfig) error {
	logger.SetGlobalLogLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.LogFile != "" {
		if err := logger.Client.SetFile(cfg.LogFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
		logger.Client.Info("Logging to file: %s", cfg.LogFile)
	}
	return nil
}

// setupGracefulShutdown handles graceful shutdown on interrupt signals
func setupGracefulShutdown(gameClient *client.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Client.Info("Received shutdown signal, closing client...")
		gameClient.Close()
		os.Exit(0)
	}()
}
