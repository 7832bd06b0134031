package lunchflow

import (
	"errors"
	"fmt"

	"github.com/lox/lunchflow-mcp/internal/contract"
	"github.com/lox/lunchflow-mcp/internal/types"
)

var (
	ErrAccountNotFound = errors.New("lunchflow: account not found")
	ErrUnauthorized    = errors.New("lunchflow: api key missing")
	ErrForbidden       = errors.New("lunchflow: api key invalid")
	ErrServer          = errors.New("lunchflow: unexpected response")
)

// StatusError is a non-200 response
type StatusError struct {
	Operation string
	Kind      contract.Kind
	Status    int
	Body      []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d - %s", e.Operation, e.Status, types.CompactBody(e.Body))
}

func (e *StatusError) Is(target error) bool {
	switch e.Kind {
	case contract.KindNotFound:
		return target == ErrAccountNotFound
	case contract.KindUnauthorized:
		return target == ErrUnauthorized
	case contract.KindForbidden:
		return target == ErrForbidden
	case contract.KindServerError:
		return target == ErrServer
	default:
		return false
	}
}

// Value converts a result into the conventional value and error pair
func Value[T any](op string, res contract.Result[T]) (T, error) {
	switch res.Kind {
	case contract.KindSuccess:
		return res.Value, nil
	case contract.KindTransportError:
		var zero T
		return zero, fmt.Errorf("%s: %w", op, res.Cause)
	default:
		var zero T
		return zero, &StatusError{Operation: op, Kind: res.Kind, Status: res.Status, Body: res.Body}
	}
}
