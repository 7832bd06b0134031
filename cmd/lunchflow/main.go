package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/lunchflow-mcp/internal/balances"
	"github.com/lox/lunchflow-mcp/internal/commands"
	"github.com/lox/lunchflow-mcp/internal/contract"
	"github.com/lox/lunchflow-mcp/internal/lunchflow"
	"github.com/lox/lunchflow-mcp/internal/types"
)

type CLI struct {
	commands.CommonConfig
	commands.APIConfig

	Accounts     AccountsCmd     `cmd:"" help:"List connected accounts"`
	Transactions TransactionsCmd `cmd:"" help:"Show the transactions of an account"`
	Balance      BalanceCmd      `cmd:"" help:"Show the balance of an account"`
	Balances     BalancesCmd     `cmd:"" help:"Show the balance of every account with totals per currency"`
}

func (c *CLI) setup() (*lunchflow.Client, *log.Logger, error) {
	logger, err := commands.SetupLogger(c.CommonConfig, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	client, err := commands.SetupClient(c.APIConfig, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

type AccountsCmd struct{}

func (cmd *AccountsCmd) Run(ctx context.Context, cli *CLI) error {
	client, _, err := cli.setup()
	if err != nil {
		return err
	}
	accounts, err := lunchflow.Value(contract.ListAccounts.Name, client.ListAccounts(ctx))
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, accounts)
}

type TransactionsCmd struct {
	AccountID int64 `help:"Numeric ID of the account" required:""`
}

func (cmd *TransactionsCmd) Run(ctx context.Context, cli *CLI) error {
	if cmd.AccountID <= 0 {
		return fmt.Errorf("account id must be a positive integer, got %d", cmd.AccountID)
	}
	client, _, err := cli.setup()
	if err != nil {
		return err
	}
	transactions, err := lunchflow.Value(contract.GetAccountTransactions.Name, client.GetAccountTransactions(ctx, cmd.AccountID))
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, transactions)
}

type BalanceCmd struct {
	AccountID int64 `help:"Numeric ID of the account" required:""`
}

func (cmd *BalanceCmd) Run(ctx context.Context, cli *CLI) error {
	if cmd.AccountID <= 0 {
		return fmt.Errorf("account id must be a positive integer, got %d", cmd.AccountID)
	}
	client, _, err := cli.setup()
	if err != nil {
		return err
	}
	balance, err := lunchflow.Value(contract.GetAccountBalance.Name, client.GetAccountBalance(ctx, cmd.AccountID))
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, balance)
}

type BalancesCmd struct {
	Concurrency int  `help:"Number of balance requests in flight" default:"4"`
	Progress    bool `help:"Show a progress bar" default:"false"`
}

func (cmd *BalancesCmd) Run(ctx context.Context, cli *CLI) error {
	client, logger, err := cli.setup()
	if err != nil {
		return err
	}

	listed, err := lunchflow.Value(contract.ListAccounts.Name, client.ListAccounts(ctx))
	if err != nil {
		return err
	}

	var progress balances.Progress
	if cmd.Progress {
		progress = balances.NewBarProgress(len(listed.Accounts), os.Stderr)
	}

	results, err := balances.Fetch(ctx, client, listed.Accounts, balances.Config{
		Concurrency: cmd.Concurrency,
		Progress:    progress,
	}, logger)
	if err != nil {
		return err
	}

	printBalances(os.Stdout, results)
	return nil
}

func printJSON(w io.Writer, v any) error {
	text, err := types.PrettyJSON(v)
	if err != nil {
		return fmt.Errorf("failed to render response: %w", err)
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

func printBalances(w io.Writer, results []balances.AccountBalance) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT\tINSTITUTION\tAVAILABLE\tCURRENT\tCURRENCY\tERROR")
	for _, r := range results {
		a := r.Account
		if r.Err != nil {
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\t-\t-\t%s\n", a.ID, a.Name, a.InstitutionName, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n", a.ID, a.Name, a.InstitutionName,
			r.Balance.Available.StringFixed(2), r.Balance.Current.StringFixed(2), r.Balance.Currency)
	}
	tw.Flush()

	totals := balances.Totals(results)
	if len(totals) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CURRENCY\tACCOUNTS\tAVAILABLE\tCURRENT")
	for _, t := range totals {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t.Currency, t.Accounts, t.Available.StringFixed(2), t.Current.StringFixed(2))
	}
	tw.Flush()
}

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lunchflow"),
		kong.Description("Query Lunch Flow accounts, transactions and balances"),
		kong.UsageOnError(),
	)
	ctx.BindTo(runCtx, (*context.Context)(nil))

	err := ctx.Run(&cli)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
