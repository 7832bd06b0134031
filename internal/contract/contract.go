// Package contract declares the Lunch Flow API operations: their method and path, the
// shape of the success body, and the error bodies each status may carry. It does not
// perform requests; see package lunchflow for the HTTP binding.
package contract

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lox/lunchflow-mcp/internal/types"
)

// CommonResponses are the error bodies every operation may return
var CommonResponses = map[int]types.ErrorSchema{
	http.StatusUnauthorized:        types.UnauthorizedSchema,
	http.StatusForbidden:           types.InvalidAPIKeySchema,
	http.StatusInternalServerError: types.InternalErrorSchema,
}

// Operation describes one API endpoint whose success body decodes into T
type Operation[T any] struct {
	Name        string
	Method      string
	Path        string // template, parameters written as {name}
	PathParams  []string
	Summary     string
	Description string
	// Errors holds error bodies specific to this operation, in addition to CommonResponses
	Errors map[int]types.ErrorSchema
}

var ListAccounts = Operation[types.AccountsResponse]{
	Name:        "listAccounts",
	Method:      http.MethodGet,
	Path:        "/accounts",
	Summary:     "List accounts",
	Description: "Returns a list of all connected accounts for the authenticated user",
}

var GetAccountTransactions = Operation[types.TransactionsResponse]{
	Name:        "getAccountTransactions",
	Method:      http.MethodGet,
	Path:        "/accounts/{accountId}/transactions",
	PathParams:  []string{"accountId"},
	Summary:     "Get account transactions",
	Description: "Returns transactions for the specified account",
	Errors: map[int]types.ErrorSchema{
		http.StatusNotFound: types.AccountNotFoundSchema,
	},
}

var GetAccountBalance = Operation[types.BalanceResponse]{
	Name:        "getAccountBalance",
	Method:      http.MethodGet,
	Path:        "/accounts/{accountId}/balance",
	PathParams:  []string{"accountId"},
	Summary:     "Get account balance",
	Description: "Returns the balance for the specified account",
	Errors: map[int]types.ErrorSchema{
		http.StatusNotFound: types.AccountNotFoundSchema,
	},
}

// AccountParams builds the path parameters for the per-account operations
func AccountParams(accountID int64) map[string]string {
	return map[string]string{"accountId": strconv.FormatInt(accountID, 10)}
}

// ParseAccountID converts an accountId path parameter back into its numeric form
func ParseAccountID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("accountId %q is not a number: %w", s, err)
	}
	return id, nil
}

// BuildPath substitutes params into the path template, percent-encoding each value.
// Every declared parameter must be supplied and no undeclared ones may be.
func (o Operation[T]) BuildPath(params map[string]string) (string, error) {
	for name := range params {
		if !o.declares(name) {
			return "", fmt.Errorf("%s: unknown path parameter %q", o.Name, name)
		}
	}

	path := o.Path
	for _, name := range o.PathParams {
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%s: missing path parameter %q", o.Name, name)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	return path, nil
}

func (o Operation[T]) declares(name string) bool {
	for _, p := range o.PathParams {
		if p == name {
			return true
		}
	}
	return false
}

// ErrorSchema returns the error body declared for status, if any
func (o Operation[T]) ErrorSchema(status int) (types.ErrorSchema, bool) {
	if s, ok := o.Errors[status]; ok {
		return s, true
	}
	s, ok := CommonResponses[status]
	return s, ok
}

// Decode classifies a response and validates its body against the declared shape.
// A 200 whose body fails validation is reported as KindTransportError, since nothing
// usable was received.
func (o Operation[T]) Decode(status int, body []byte) Result[T] {
	res := Result[T]{Status: status, Body: body}

	if status == http.StatusOK {
		if err := json.Unmarshal(body, &res.Value); err != nil {
			res.Kind = KindTransportError
			res.Cause = fmt.Errorf("invalid %s response: %w", o.Name, err)
			return res
		}
		res.Kind = KindSuccess
		return res
	}

	schema, declared := o.ErrorSchema(status)
	if !declared {
		res.Kind = KindServerError
		return res
	}

	switch schema.Kind {
	case types.ErrorKindAccountNotFound:
		res.Kind = KindNotFound
	case types.ErrorKindUnauthorized:
		res.Kind = KindUnauthorized
	case types.ErrorKindInvalidAPIKey:
		res.Kind = KindForbidden
	case types.ErrorKindInternal:
		res.Kind = KindServerError
	default:
		res.Kind = KindServerError
	}

	// The status decides the kind. The body is attached only when it matches the declaration.
	if errBody, err := schema.Validate(body); err == nil {
		res.Error = &errBody
	}
	return res
}
