package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/lunchflow-mcp/internal/contract"
	"github.com/lox/lunchflow-mcp/internal/metrics"
	"github.com/lox/lunchflow-mcp/internal/types"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "Lunch Flow"
	ServerVersion = "0.1.0"

	ToolListAccounts           = "lunchflow_list_accounts"
	ToolGetAccountTransactions = "lunchflow_get_account_transactions"
	ToolGetAccountBalance      = "lunchflow_get_account_balance"
)

// API is the Lunch Flow client as seen by the tools
type API interface {
	ListAccounts(ctx context.Context) contract.Result[types.AccountsResponse]
	GetAccountTransactions(ctx context.Context, accountID int64) contract.Result[types.TransactionsResponse]
	GetAccountBalance(ctx context.Context, accountID int64) contract.Result[types.BalanceResponse]
}

type Server struct {
	api       API
	logger    *log.Logger
	metrics   *metrics.Metrics
	mcpServer *server.MCPServer
}

func New(api API, logger *log.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		api:     api,
		logger:  logger,
		metrics: m,
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcpServer.AddTools(s.tools()...)

	return s
}

// MCPServer exposes the underlying server for transports
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolListAccounts,
				mcp.WithDescription("Get a list of all connected accounts for the authenticated user. Returns account details including name, institution, provider, currency, and status."),
				mcp.WithTitleAnnotation("List Accounts"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: s.listAccountsHandler,
		},
		{
			Tool: mcp.NewTool(ToolGetAccountTransactions,
				mcp.WithDescription("Get transactions for a specific bank account. Returns transaction history including date, amount, description, merchant, and category information."),
				mcp.WithNumber("accountId",
					mcp.Required(),
					mcp.Description("The numeric ID of the bank account to get transactions for"),
					positiveInteger(),
				),
				mcp.WithTitleAnnotation("Get Account Transactions"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: s.getAccountTransactionsHandler,
		},
		{
			Tool: mcp.NewTool(ToolGetAccountBalance,
				mcp.WithDescription("Get the current balance for a specific bank account. Returns available and current balance information."),
				mcp.WithNumber("accountId",
					mcp.Required(),
					mcp.Description("The numeric ID of the bank account to get the balance for"),
					positiveInteger(),
				),
				mcp.WithTitleAnnotation("Get Account Balance"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: s.getAccountBalanceHandler,
		},
	}
}

// positiveInteger narrows a number property to the integers greater than zero
func positiveInteger() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
		schema["exclusiveMinimum"] = 0
	}
}

func (s *Server) listAccountsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := s.begin(ToolListAccounts)
	return call.finish(toolResult(s.api.ListAccounts(ctx), 0)), nil
}

func (s *Server) getAccountTransactionsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := s.begin(ToolGetAccountTransactions)

	accountID, err := accountIDArgument(request.GetArguments())
	if err != nil {
		return call.invalid(err), nil
	}
	call.logger = call.logger.With("account_id", accountID)

	return call.finish(toolResult(s.api.GetAccountTransactions(ctx, accountID), accountID)), nil
}

func (s *Server) getAccountBalanceHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := s.begin(ToolGetAccountBalance)

	accountID, err := accountIDArgument(request.GetArguments())
	if err != nil {
		return call.invalid(err), nil
	}
	call.logger = call.logger.With("account_id", accountID)

	return call.finish(toolResult(s.api.GetAccountBalance(ctx, accountID), accountID)), nil
}

// toolResult maps an operation result onto the tool result the host sees
func toolResult[T any](res contract.Result[T], accountID int64) (*mcp.CallToolResult, contract.Kind) {
	switch res.Kind {
	case contract.KindSuccess:
		text, err := types.PrettyJSON(res.Value)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error executing tool: %v", err)), contract.KindTransportError
		}
		return mcp.NewToolResultText(text), contract.KindSuccess

	case contract.KindNotFound:
		return mcp.NewToolResultError(fmt.Sprintf("Error: Account with ID %d not found", accountID)), res.Kind

	case contract.KindUnauthorized, contract.KindForbidden, contract.KindServerError:
		return mcp.NewToolResultError(fmt.Sprintf("Error: %d - %s", res.Status, types.CompactBody(res.Body))), res.Kind

	case contract.KindTransportError:
		return mcp.NewToolResultError(fmt.Sprintf("Error executing tool: %v", res.Cause)), res.Kind
	}

	return mcp.NewToolResultError(fmt.Sprintf("Error executing tool: unexpected result %s", res.Kind)), res.Kind
}

// toolCall tracks one invocation for logging and metrics
type toolCall struct {
	server *Server
	tool   string
	start  time.Time
	logger *log.Logger
}

func (s *Server) begin(tool string) *toolCall {
	logger := s.logger.With("tool", tool, "call_id", uuid.NewString())
	logger.Debug("Tool call started")
	return &toolCall{
		server: s,
		tool:   tool,
		start:  time.Now(),
		logger: logger,
	}
}

func (c *toolCall) finish(result *mcp.CallToolResult, kind contract.Kind) *mcp.CallToolResult {
	c.server.metrics.RecordToolCall(c.tool, kind.String())
	if kind == contract.KindSuccess {
		c.logger.Debug("Tool call completed", "duration", time.Since(c.start))
	} else {
		c.logger.Warn("Tool call failed", "outcome", kind.String(), "duration", time.Since(c.start))
	}
	return result
}

func (c *toolCall) invalid(err error) *mcp.CallToolResult {
	c.server.metrics.RecordToolCall(c.tool, "invalid_input")
	c.logger.Warn("Rejected tool arguments", "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err))
}
