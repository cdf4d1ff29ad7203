// Package config holds the command-line configuration of the server and client
package config

import (
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8888
	DefaultReadTimeout  = time.Second
	DefaultWriteTimeout = 5 * time.Second
	DefaultLogLevel     = "INFO"
	DefaultServerAddr   = "localhost:8888"
)

// ServerConfig configures the game server
type ServerConfig struct {
	Host         string        `validate:"required,hostname|ip"`
	Port         int           `validate:"min=0,max=65535"`
	ReadTimeout  time.Duration `validate:"min=1ms"`
	WriteTimeout time.Duration `validate:"min=1ms"`
	LogLevel     string        `validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFile      string
	LogDir       string

	ShowHelp    bool
	ShowVersion bool
}

// ClientConfig configures the terminal client
type ClientConfig struct {
	Server   string `validate:"required,hostname_port"`
	LogLevel string `validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFile  string
}

var validate = validator.New()

// DefaultServerConfig returns the configuration used when no flag is given
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         DefaultHost,
		Port:         DefaultPort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		LogLevel:     DefaultLogLevel,
	}
}

// Address returns host:port for net.Listen
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration
func (c *ServerConfig) Validate() error {
	c.LogLevel = strings.ToUpper(c.LogLevel)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}

// LoadServerConfig parses server flags from args (without the program name)
func LoadServerConfig(name string, args []string, output io.Writer) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Server host")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Server port")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "Read poll interval used to notice shutdown")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Deadline for a single frame write")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path (optional)")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for per-component log files (optional)")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowHelp || cfg.ShowVersion {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration
func (c *ClientConfig) Validate() error {
	c.LogLevel = strings.ToUpper(c.LogLevel)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}

// LoadClientConfig parses client flags from args (without the program name)
func LoadClientConfig(name string, args []string, output io.Writer) (*ClientConfig, error) {
	cfg := &ClientConfig{
		Server:   DefaultServerAddr,
		LogLevel: DefaultLogLevel,
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Server, "server", cfg.Server, "Server address (host:port)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path (optional)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
