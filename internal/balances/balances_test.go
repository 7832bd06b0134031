package balances

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/lunchflow-mcp/internal/contract"
	"github.com/lox/lunchflow-mcp/internal/lunchflow"
	"github.com/lox/lunchflow-mcp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	balances map[int64]types.Balance
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (f *fakeAPI) GetAccountBalance(ctx context.Context, accountID int64) contract.Result[types.BalanceResponse] {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	balance, ok := f.balances[accountID]
	f.mu.Unlock()
	if !ok {
		return contract.Result[types.BalanceResponse]{
			Kind:   contract.KindNotFound,
			Status: http.StatusNotFound,
			Body:   []byte(`{"error":"Not Found","message":"Account not found."}`),
		}
	}
	return contract.Result[types.BalanceResponse]{
		Kind:   contract.KindSuccess,
		Status: http.StatusOK,
		Value:  types.BalanceResponse{Balance: balance},
	}
}

func accounts(ids ...int64) []types.Account {
	out := make([]types.Account, len(ids))
	for i, id := range ids {
		out[i] = types.Account{ID: id, Name: "acct", Provider: types.ProviderGoCardless}
	}
	return out
}

type countingProgress struct {
	added  atomic.Int32
	closed atomic.Bool
}

func (p *countingProgress) Add(n int) error {
	p.added.Add(int32(n))
	return nil
}

func (p *countingProgress) Close() { p.closed.Store(true) }

func TestFetchKeepsOrderAndRecordsFailures(t *testing.T) {
	api := &fakeAPI{balances: map[int64]types.Balance{
		1: {Available: types.MustAmount("10.10"), Current: types.MustAmount("12"), Currency: "AUD"},
		3: {Available: types.MustAmount("5"), Current: types.MustAmount("5"), Currency: "USD"},
	}}
	progress := &countingProgress{}

	results, err := Fetch(context.Background(), api, accounts(1, 2, 3), Config{Concurrency: 2, Progress: progress}, log.New(io.Discard))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int64(1), results[0].Account.ID)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "AUD", results[0].Balance.Currency)

	assert.Equal(t, int64(2), results[1].Account.ID)
	assert.ErrorIs(t, results[1].Err, lunchflow.ErrAccountNotFound)

	assert.Equal(t, int64(3), results[2].Account.ID)
	assert.NoError(t, results[2].Err)

	assert.Equal(t, int32(3), progress.added.Load())
	assert.True(t, progress.closed.Load())
}

func TestFetchRespectsConcurrency(t *testing.T) {
	balances := map[int64]types.Balance{}
	ids := make([]int64, 12)
	for i := range ids {
		ids[i] = int64(i + 1)
		balances[ids[i]] = types.Balance{Available: types.MustAmount("1"), Current: types.MustAmount("1"), Currency: "EUR"}
	}
	api := &fakeAPI{balances: balances, delay: 10 * time.Millisecond}

	_, err := Fetch(context.Background(), api, accounts(ids...), Config{Concurrency: 3}, log.New(io.Discard))
	require.NoError(t, err)
	assert.LessOrEqual(t, api.maxSeen.Load(), int32(3))
}

func TestFetchCancelled(t *testing.T) {
	api := &fakeAPI{balances: map[int64]types.Balance{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, api, accounts(1, 2), Config{Concurrency: 1}, log.New(io.Discard))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTotals(t *testing.T) {
	results := []AccountBalance{
		{Balance: types.Balance{Available: types.MustAmount("0.1"), Current: types.MustAmount("1.00"), Currency: "usd"}},
		{Balance: types.Balance{Available: types.MustAmount("0.2"), Current: types.MustAmount("-3.5"), Currency: "USD"}},
		{Balance: types.Balance{Available: types.MustAmount("100"), Current: types.MustAmount("100"), Currency: "AUD"}},
		{Err: lunchflow.ErrServer, Balance: types.Balance{Currency: "GBP"}},
	}

	totals := Totals(results)
	require.Len(t, totals, 2)

	assert.Equal(t, "AUD", totals[0].Currency)
	assert.Equal(t, 1, totals[0].Accounts)

	assert.Equal(t, "USD", totals[1].Currency)
	assert.Equal(t, 2, totals[1].Accounts)
	assert.Equal(t, "0.3", totals[1].Available.String())
	assert.Equal(t, "-2.5", totals[1].Current.String())
}
