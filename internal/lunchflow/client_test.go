package lunchflow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/lunchflow-mcp/internal/contract"
	"github.com/lox/lunchflow-mcp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

func newTestClient(t *testing.T, url string, opts ...func(Config) Config) *Client {
	t.Helper()
	config := NewConfig().
		WithURL(url).
		WithAPIKey(testAPIKey).
		WithTimeout(2 * time.Second).
		WithLogger(log.New(io.Discard))
	for _, opt := range opts {
		config = opt(config)
	}
	client, err := NewClient(config)
	require.NoError(t, err)
	return client
}

func TestListAccountsSendsKeyAndPath(t *testing.T) {
	var gotPath, gotKey, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"accounts":[{"id":1,"name":"Checking","institution_name":"Bank","institution_logo":"url","provider":"gocardless"}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1")
	res := client.ListAccounts(context.Background())

	require.Equal(t, contract.KindSuccess, res.Kind, "cause: %v", res.Cause)
	assert.Equal(t, "/api/v1/accounts", gotPath)
	assert.Equal(t, testAPIKey, gotKey)
	assert.Equal(t, http.MethodGet, gotMethod)
	require.Len(t, res.Value.Accounts, 1)
	assert.Equal(t, types.ProviderGoCardless, res.Value.Accounts[0].Provider)
}

func TestAccountOperationsUseAccountPath(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/transactions"):
			_, _ = io.WriteString(w, `{"transactions":[]}`)
		case strings.HasSuffix(r.URL.Path, "/balance"):
			_, _ = io.WriteString(w, `{"balance":{"available":10.5,"current":11,"currency":"GBP"}}`)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/api/v1/")

	txs := client.GetAccountTransactions(context.Background(), 7)
	require.True(t, txs.OK(), "cause: %v", txs.Cause)
	assert.NotNil(t, txs.Value.Transactions)
	assert.Empty(t, txs.Value.Transactions)

	bal := client.GetAccountBalance(context.Background(), 7)
	require.True(t, bal.OK(), "cause: %v", bal.Cause)
	assert.Equal(t, "GBP", bal.Value.Balance.Currency)

	assert.Equal(t, []string{"/api/v1/accounts/7/transactions", "/api/v1/accounts/7/balance"}, paths)
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   contract.Kind
	}{
		{"not_found", http.StatusNotFound, `{"error":"Not Found","message":"Account not found."}`, contract.KindNotFound},
		{"unauthorized", http.StatusUnauthorized, `{"error":"Unauthorized","message":"API key is required. Please provide x-api-key header."}`, contract.KindUnauthorized},
		{"forbidden", http.StatusForbidden, `{"error":"Forbidden","message":"Invalid API key."}`, contract.KindForbidden},
		{"internal", http.StatusInternalServerError, `{"error":"Internal Server Error","message":"An unexpected error occurred while fetching transactions."}`, contract.KindServerError},
		{"bad_gateway", http.StatusBadGateway, `upstream down`, contract.KindServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			res := newTestClient(t, srv.URL).GetAccountTransactions(context.Background(), 999)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.body, string(res.Body))
		})
	}
}

func TestInvalidSuccessBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"accounts":[{"id":1,"name":"x","institution_name":"b","institution_logo":"c","provider":"plaid"}]}`)
	}))
	defer srv.Close()

	res := newTestClient(t, srv.URL).ListAccounts(context.Background())
	require.Equal(t, contract.KindTransportError, res.Kind)
	assert.ErrorIs(t, res.Cause, types.ErrValidation)
	assert.ErrorContains(t, res.Cause, "accounts[0].provider")
}

func TestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := newTestClient(t, srv.URL, func(c Config) Config { return c.WithTimeout(50 * time.Millisecond) })
	res := client.ListAccounts(context.Background())

	require.Equal(t, contract.KindTransportError, res.Kind)
	assert.Equal(t, 0, res.Status)
	assert.ErrorContains(t, res.Cause, "Client.Timeout exceeded")
}

func TestCancelledContextIsNeverSuccess(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = io.WriteString(w, `{"accounts":[]}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestClient(t, srv.URL).ListAccounts(ctx)
	assert.Equal(t, contract.KindTransportError, res.Kind)
	assert.ErrorIs(t, res.Cause, context.Canceled)
	assert.Equal(t, int32(0), requests.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSingleAttemptByDefault(t *testing.T) {
	var attempts atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempts.Add(1)
		return nil, errors.New("connection reset by peer")
	})

	client := newTestClient(t, "http://lunchflow.invalid/api/v1", func(c Config) Config {
		return c.WithHTTPClient(&http.Client{Transport: transport})
	})
	res := client.ListAccounts(context.Background())

	require.Equal(t, contract.KindTransportError, res.Kind)
	assert.ErrorContains(t, res.Cause, "connection reset by peer")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRetryOnlyTransportFailures(t *testing.T) {
	var attempts atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"accounts":[]}`)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})

	client := newTestClient(t, "http://lunchflow.invalid", func(c Config) Config {
		return c.WithHTTPClient(&http.Client{Transport: transport}).WithRetryAttempts(3)
	})
	res := client.ListAccounts(context.Background())
	require.True(t, res.OK(), "cause: %v", res.Cause)
	assert.Equal(t, int32(2), attempts.Load())

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client = newTestClient(t, srv.URL, func(c Config) Config { return c.WithRetryAttempts(3) })
	res = client.ListAccounts(context.Background())
	assert.Equal(t, contract.KindServerError, res.Kind)
	assert.Equal(t, int32(1), requests.Load())
}

func TestConfigValidate(t *testing.T) {
	logger := log.New(io.Discard)
	valid := NewConfig().WithAPIKey("k").WithLogger(logger)
	require.NoError(t, valid.Validate())
	assert.Equal(t, DefaultURL, valid.URL)

	tests := []struct {
		name   string
		config Config
		msg    string
	}{
		{"missing_key", valid.WithAPIKey(""), "api key is required"},
		{"missing_url", valid.WithURL(""), "api url is required"},
		{"bad_scheme", valid.WithURL("ftp://lunchflow.app"), "must be http or https"},
		{"zero_timeout", valid.WithTimeout(0), "timeout must be greater than 0"},
		{"zero_attempts", valid.WithRetryAttempts(0), "retry attempts must be greater than 0"},
		{"missing_logger", valid.WithLogger(nil), "logger is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.config.Validate(), tt.msg)
		})
	}
}

func TestValue(t *testing.T) {
	ok := contract.Result[int]{Kind: contract.KindSuccess, Status: 200, Value: 5}
	v, err := Value("op", ok)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = Value("getAccountBalance", contract.Result[int]{Kind: contract.KindNotFound, Status: 404, Body: []byte(`{"error":"Not Found"}`)})
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.EqualError(t, err, `getAccountBalance: 404 - {"error":"Not Found"}`)

	_, err = Value("listAccounts", contract.Result[int]{Kind: contract.KindForbidden, Status: 403})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	cause := errors.New("boom")
	_, err = Value("listAccounts", contract.TransportFailure[int](cause))
	assert.ErrorIs(t, err, cause)
}
