package contract

import (
	"fmt"

	"github.com/lox/lunchflow-mcp/internal/types"
)

// Kind tags the outcome of an operation
type Kind int

const (
	KindSuccess Kind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	// KindServerError is a 500 or any status the operation does not declare
	KindServerError
	// KindTransportError means no valid response was received
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindServerError:
		return "server_error"
	case KindTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of a single operation call
type Result[T any] struct {
	Kind Kind
	// Status is zero for KindTransportError when no response arrived
	Status int
	// Body is the raw response body as received
	Body []byte
	// Value is set for KindSuccess
	Value T
	// Error is the decoded error body, when it matched the declared schema
	Error *types.ErrorResponse
	// Cause is set for KindTransportError
	Cause error
}

// TransportFailure builds the result for a request that produced no usable response
func TransportFailure[T any](err error) Result[T] {
	return Result[T]{Kind: KindTransportError, Cause: err}
}

func (r Result[T]) OK() bool {
	return r.Kind == KindSuccess
}
