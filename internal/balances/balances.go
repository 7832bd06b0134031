// Package balances fetches the balance of many accounts at once and totals them by currency.
package balances

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/lunchflow-mcp/internal/contract"
	"github.com/lox/lunchflow-mcp/internal/lunchflow"
	"github.com/lox/lunchflow-mcp/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// API is the part of the Lunch Flow client balances needs
type API interface {
	GetAccountBalance(ctx context.Context, accountID int64) contract.Result[types.BalanceResponse]
}

// Config controls a Fetch
type Config struct {
	// Concurrency is the maximum number of requests in flight
	Concurrency int
	// Progress is advanced once per account. Nil means no progress reporting.
	Progress Progress
}

// AccountBalance is the outcome for one account. Exactly one of Balance or Err is meaningful.
type AccountBalance struct {
	Account types.Account
	Balance types.Balance
	Err     error
}

// Fetch requests the balance of every account. A failure for one account is recorded in its
// AccountBalance and does not stop the others; only cancellation of ctx returns an error.
// Results are in the same order as accounts.
func Fetch(ctx context.Context, api API, accounts []types.Account, config Config, logger *log.Logger) ([]AccountBalance, error) {
	progress := config.Progress
	if progress == nil {
		progress = &NoopProgress{}
	}
	defer progress.Close()

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]AccountBalance, len(accounts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, account := range accounts {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			start := time.Now()
			balance, err := lunchflow.Value(contract.GetAccountBalance.Name, api.GetAccountBalance(gCtx, account.ID))
			results[i] = AccountBalance{Account: account, Balance: balance.Balance, Err: err}

			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				logger.Warn("Failed to fetch balance", "account_id", account.ID, "account", account.Name, "error", err)
			} else {
				logger.Debug("Fetched balance", "account_id", account.ID, "duration", time.Since(start))
			}

			if err := progress.Add(1); err != nil {
				return fmt.Errorf("error updating progress: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Balance fetch interrupted")
		}
		return nil, fmt.Errorf("error fetching balances: %w", err)
	}

	return results, nil
}

// Total sums the balances of every account in one currency
type Total struct {
	Currency  string
	Available decimal.Decimal
	Current   decimal.Decimal
	Accounts  int
}

// Totals sums successful results per currency, ordered by currency code. Currency codes
// are compared case-insensitively.
func Totals(results []AccountBalance) []Total {
	byCurrency := make(map[string]*Total)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		code := strings.ToUpper(r.Balance.Currency)
		t, ok := byCurrency[code]
		if !ok {
			t = &Total{Currency: code}
			byCurrency[code] = t
		}
		t.Available = t.Available.Add(r.Balance.Available.Decimal)
		t.Current = t.Current.Add(r.Balance.Current.Decimal)
		t.Accounts++
	}

	totals := make([]Total, 0, len(byCurrency))
	for _, t := range byCurrency {
		totals = append(totals, *t)
	}
	slices.SortFunc(totals, func(a, b Total) int {
		return strings.Compare(a.Currency, b.Currency)
	})
	return totals
}
