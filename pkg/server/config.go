package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Address is the listen address (e.g. "localhost:5173").
	Address string

	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading the whole request.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration

	// IdleTimeout bounds keep-alive idle time.
	IdleTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// AccessLog enables chi's request logger.
	AccessLog bool

	// Logger receives server diagnostics.
	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           "localhost:5173",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Gatherer:          prometheus.DefaultGatherer,
	}
}

// ValidateConfig checks the configuration for obvious mistakes.
func (c *ServerConfig) ValidateConfig() error {
	if c.Address == "" {
		return errors.New("server: address is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("server: shutdown timeout must be positive")
	}
	return nil
}
