package commands

import "time"

// APIConfig contains flag definitions for reaching the Lunch Flow API
type APIConfig struct {
	// APIKey is the Lunch Flow API key, from https://lunchflow.app/destinations
	APIKey string `help:"Lunch Flow API key" env:"LUNCHFLOW_API_KEY" required:""`
	// APIURL is the Lunch Flow API endpoint
	APIURL string `help:"Lunch Flow API endpoint URL" env:"LUNCHFLOW_API_URL" default:"https://lunchflow.app/api/v1"`
	// Timeout bounds each request to the API
	Timeout time.Duration `help:"Timeout for each API request" env:"LUNCHFLOW_TIMEOUT" default:"30s"`
	// RetryAttempts is the number of attempts for requests that fail before a response arrives
	RetryAttempts uint `help:"Attempts for requests that fail without a response (1 = no retry)" default:"1"`
}

// CommonConfig contains configuration common to all commands
type CommonConfig struct {
	// LogLevel is the logging level to use
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error" env:"LUNCHFLOW_LOG_LEVEL"`
}
