package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is wrapped by every argument validation failure
var ErrInvalidArgument = errors.New("invalid input")

// maxAccountID is the largest integer a JSON number carries exactly
const maxAccountID = 1<<53 - 1

// accountIDArgument extracts accountId, which must be a positive integer. Integral floats
// such as 12.0 are accepted since JSON does not distinguish them.
func accountIDArgument(args map[string]any) (int64, error) {
	raw, ok := args["accountId"]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: accountId is required", ErrInvalidArgument)
	}

	var id int64
	switch v := raw.(type) {
	case int:
		id = int64(v)
	case int64:
		id = v
	case float64:
		n, err := integral(v)
		if err != nil {
			return 0, err
		}
		id = n
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: accountId must be a number, got %q", ErrInvalidArgument, v.String())
		}
		n, err := integral(f)
		if err != nil {
			return 0, err
		}
		id = n
	default:
		return 0, fmt.Errorf("%w: accountId must be a number, got %s", ErrInvalidArgument, jsonType(raw))
	}

	if id <= 0 {
		return 0, fmt.Errorf("%w: accountId must be a positive integer, got %d", ErrInvalidArgument, id)
	}
	if id > maxAccountID {
		return 0, fmt.Errorf("%w: accountId must be at most %d", ErrInvalidArgument, int64(maxAccountID))
	}
	return id, nil
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: accountId must be an integer, got %v", ErrInvalidArgument, f)
	}
	if math.Abs(f) > maxAccountID {
		return 0, fmt.Errorf("%w: accountId must be at most %d", ErrInvalidArgument, int64(maxAccountID))
	}
	return int64(f), nil
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
