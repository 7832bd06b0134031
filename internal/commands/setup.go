package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/lunchflow-mcp/internal/lunchflow"
	"github.com/lox/lunchflow-mcp/internal/metrics"
)

// SetupLogger creates a logger writing to w at the configured level
func SetupLogger(config CommonConfig, w io.Writer) (*log.Logger, error) {
	logger := log.New(w)

	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	return logger, nil
}

// SetupClient initializes a Lunch Flow API client from the config
func SetupClient(config APIConfig, logger *log.Logger, m *metrics.Metrics) (*lunchflow.Client, error) {
	clientConfig := lunchflow.NewConfig().
		WithAPIKey(config.APIKey).
		WithLogger(logger).
		WithMetrics(m)

	if config.APIURL != "" {
		clientConfig = clientConfig.WithURL(config.APIURL)
	}
	if config.Timeout > 0 {
		clientConfig = clientConfig.WithTimeout(config.Timeout)
	}
	if config.RetryAttempts > 0 {
		clientConfig = clientConfig.WithRetryAttempts(config.RetryAttempts)
	}

	client, err := lunchflow.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Lunch Flow client: %w", err)
	}

	logger.Debug("Using Lunch Flow API", "url", clientConfig.URL, "timeout", clientConfig.Timeout, "retry_attempts", clientConfig.RetryAttempts)
	return client, nil
}
