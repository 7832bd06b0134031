// Package lunchflow binds the API contract to HTTP.
package lunchflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/lox/lunchflow-mcp/internal/contract"
	"github.com/lox/lunchflow-mcp/internal/metrics"
	"github.com/lox/lunchflow-mcp/internal/types"
)

// DefaultURL is the production API endpoint
const DefaultURL = "https://lunchflow.app/api/v1"

// APIKeyHeader carries the configured key on every request
const APIKeyHeader = "X-API-Key"

const maxBodySize = 16 << 20

// Config holds configuration for the Lunch Flow API client
type Config struct {
	URL    string
	APIKey string
	// Timeout bounds each HTTP attempt, including reading the body
	Timeout time.Duration
	// RetryAttempts is the total number of attempts for requests that fail before a response
	// arrives. A response with any status is never retried.
	RetryAttempts uint
	Logger        *log.Logger
	Metrics       *metrics.Metrics
	HTTPClient    *http.Client
}

func NewConfig() Config {
	return Config{
		URL:           DefaultURL,
		Timeout:       30 * time.Second,
		RetryAttempts: 1,
	}
}

func (c Config) WithURL(url string) Config {
	c.URL = url
	return c
}
func (c Config) WithAPIKey(apiKey string) Config {
	c.APIKey = apiKey
	return c
}
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}
func (c Config) WithRetryAttempts(attempts uint) Config {
	c.RetryAttempts = attempts
	return c
}
func (c Config) WithLogger(logger *log.Logger) Config {
	c.Logger = logger
	return c
}
func (c Config) WithMetrics(m *metrics.Metrics) Config {
	c.Metrics = m
	return c
}

// WithHTTPClient replaces the default client; Timeout is then left to the caller's client
func (c Config) WithHTTPClient(client *http.Client) Config {
	c.HTTPClient = client
	return c
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.URL == "" {
		return fmt.Errorf("api url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url must be http or https, got %q", c.URL)
	}
	if c.Timeout <= 0 && c.HTTPClient == nil {
		return fmt.Errorf("timeout must be greater than 0")
	}
	if c.RetryAttempts == 0 {
		return fmt.Errorf("retry attempts must be greater than 0")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Client calls the Lunch Flow API. It holds no per-call state and is safe for concurrent use.
type Client struct {
	config     Config
	baseURL    *url.URL
	httpClient *http.Client
	logger     *log.Logger
	metrics    *metrics.Metrics
}

func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	baseURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &Client{
		config:     config,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     config.Logger,
		metrics:    config.Metrics,
	}, nil
}

// ListAccounts returns every account connected for the API key
func (c *Client) ListAccounts(ctx context.Context) contract.Result[types.AccountsResponse] {
	return call(ctx, c, contract.ListAccounts, nil)
}

// GetAccountTransactions returns the transactions of one account
func (c *Client) GetAccountTransactions(ctx context.Context, accountID int64) contract.Result[types.TransactionsResponse] {
	return call(ctx, c, contract.GetAccountTransactions, contract.AccountParams(accountID))
}

// GetAccountBalance returns the balance of one account
func (c *Client) GetAccountBalance(ctx context.Context, accountID int64) contract.Result[types.BalanceResponse] {
	return call(ctx, c, contract.GetAccountBalance, contract.AccountParams(accountID))
}

type response struct {
	status int
	body   []byte
}

func call[T any](ctx context.Context, c *Client, op contract.Operation[T], params map[string]string) contract.Result[T] {
	path, err := op.BuildPath(params)
	if err != nil {
		return contract.TransportFailure[T](err)
	}
	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, op.Method, endpoint.String(), nil)
	if err != nil {
		return contract.TransportFailure[T](fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set(APIKeyHeader, c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	var resp response
	start := time.Now()
	err = retry.Do(
		func() error {
			attemptStart := time.Now()
			r, err := c.do(req)
			if err != nil {
				c.metrics.RecordUpstream(op.Name, 0, time.Since(attemptStart))
				return err
			}
			c.metrics.RecordUpstream(op.Name, r.status, time.Since(attemptStart))
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.config.RetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("Retrying Lunch Flow request", "operation", op.Name, "attempt", n+1, "max_attempts", c.config.RetryAttempts, "error", err)
		}),
	)
	if err != nil {
		c.logger.Debug("Lunch Flow request failed", "operation", op.Name, "path", path, "duration", time.Since(start), "error", err)
		return contract.TransportFailure[T](err)
	}

	c.logger.Debug("Lunch Flow request completed", "operation", op.Name, "path", path, "status", resp.status, "duration", time.Since(start))

	res := op.Decode(resp.status, resp.body)
	if res.Kind == contract.KindTransportError {
		c.logger.Debug("Response failed validation", "operation", op.Name, "body", string(resp.body), "error", res.Cause)
	}
	return res
}

func (c *Client) do(req *http.Request) (response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}
	return response{status: resp.StatusCode, body: body}, nil
}
