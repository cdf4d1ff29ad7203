// Naval Combat Server - Main Entry Point
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"naval-combat/internal/config"
	"naval-combat/internal/server"
	"naval-combat/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "dev"
)

func main() {
	cfg, err := config.LoadServerConfig(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if cfg.ShowHelp {
		showHelp()
		return
	}
	if cfg.ShowVersion {
		showVersion()
		return
	}

	if err := initLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logger.Server.Info("Starting Naval Combat Server v%s", version)

	gameServer := server.NewServer(cfg)
	if err := gameServer.Listen(); err != nil {
		logger.Server.Fatal("%v", err)
	}

	setupGracefulShutdown(gameServer)

	if err := gameServer.Serve(); err != nil {
		logger.Server.Fatal("Server failed: %v", err)
	}
}

// initLogging sets up the logging system
func initLogging(cfg *config.ServerConfig) error {
	logger.SetGlobalLogLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.LogDir != "" {
		if err := logger.InitializeFileLogging(cfg.LogDir); err != nil {
			// Console logging still works without the directory.
			logger.Server.Warn("Could not initialize file logging: %v", err)
		}
	}

	if cfg.LogFile != "" {
		if err := logger.Server.SetFile(cfg.LogFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
		logger.Server.Info("Logging to file: %s", cfg.LogFile)
	}

	return nil
}

// setupGracefulShutdown handles graceful shutdown on interrupt signals
func setupGracefulShutdown(gameServer *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Server.Info("Received shutdown signal, stopping server...")
		gameServer.Stop()
		logger.Server.Close()
		os.Exit(0)
	}()
}

// showHelp displays help information
func showHelp() {
	fmt.Printf(`Naval Combat Server v%s

USAGE:
    %s [OPTIONS]

OPTIONS:
    -host string           Server host (default "0.0.0.0")
    -port int              Server port (default 8888)
    -read-timeout dur      Read poll interval used to notice shutdown (default 1s)
    -write-timeout dur     Deadline for a single frame write (default 5s)
    -log-level string      Set log level (DEBUG, INFO, WARN, ERROR) (default "INFO")
    -log-file string       Set log file path (optional)
    -log-dir string        Write server.log / client.log into this directory (optional)
    -help                  Show this help message
    -version               Show version information

EXAMPLES:
    # Start server with default settings
    %s

    # Local only, debug logging
    %s -host 127.0.0.1 -port 8889 -log-level DEBUG

GAME:
    - Exactly two players per table; a third connection is refused
    - 10x10 board, players place their fleets, then fire in turns
    - A hit or a sink keeps the turn, a miss passes it
    - Bomb (2x2) and air strike (row) volleys always pass the turn
    - First player to sink the whole enemy fleet wins

NETWORK PROTOCOL:
    - TCP, one JSON object per line, UTF-8
`, version, os.Args[0], os.Args[0], os.Args[0])
}

// showVersion displays version information
func showVersion() {
	fmt.Printf(`Naval Combat Server
Version: %s
Build Time: %s
`, version, buildTime)
}
