package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrValidation is matched by every *ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError reports a structural mismatch between data and a declared shape
type ValidationError struct {
	// Path locates the offending value, e.g. "accounts[2].provider". Empty means the root.
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidationError reports whether err is, or wraps, a *ValidationError
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// atPath returns err relocated under prefix. Non-validation errors (json syntax and type
// errors) are converted so that every decode failure carries a path.
func atPath(prefix string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		path := prefix
		switch {
		case ve.Path == "":
		case prefix == "", strings.HasPrefix(ve.Path, "["):
			path += ve.Path
		default:
			path += "." + ve.Path
		}
		return &ValidationError{Path: path, Reason: ve.Reason}
	}

	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return &ValidationError{Path: prefix, Reason: fmt.Sprintf("expected %s, got %s", jsonKind(te.Type.Kind().String()), te.Value)}
	}
	return &ValidationError{Path: prefix, Reason: err.Error()}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "array"
	case "struct", "map":
		return "object"
	default:
		return "number"
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeObject splits a JSON object into its members.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ValidationError{Reason: "expected object"}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return obj, nil
}

// decodeArray splits a JSON array into its elements.
func decodeArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ValidationError{Reason: "expected array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return items, nil
}

// field decodes obj[name] into dst. An absent or null member is an error only when required.
// Unknown members of obj are ignored.
func field(obj map[string]json.RawMessage, name string, required bool, dst any) error {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		if required {
			return &ValidationError{Path: name, Reason: "required"}
		}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return atPath(name, err)
	}
	return nil
}

// stringField decodes a string member, rejecting numbers and other kinds that json would
// otherwise report with a less useful message.
func stringField(obj map[string]json.RawMessage, name string, required bool, dst **string) error {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		if required {
			return &ValidationError{Path: name, Reason: "required"}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return atPath(name, err)
	}
	*dst = &s
	return nil
}

func requiredString(obj map[string]json.RawMessage, name string, dst *string) error {
	var s *string
	if err := stringField(obj, name, true, &s); err != nil {
		return err
	}
	*dst = *s
	return nil
}

// intField decodes an integral JSON number. Values such as 7.0 are accepted, 7.5 is not.
func intField(obj map[string]json.RawMessage, name string, dst *int64) error {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		return &ValidationError{Path: name, Reason: "required"}
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || !isNumberLiteral(raw) {
		return &ValidationError{Path: name, Reason: "expected integer, got " + string(bytes.TrimSpace(raw))}
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		if i > maxSafeInteger || i < -maxSafeInteger {
			return &ValidationError{Path: name, Reason: "integer out of range: " + n.String()}
		}
		*dst = i
		return nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return &ValidationError{Path: name, Reason: "expected integer, got " + n.String()}
	}
	*dst = int64(f)
	return nil
}

// maxSafeInteger is the largest integer every JSON consumer can represent exactly.
const maxSafeInteger = 1<<53 - 1

// json.Number happily accepts quoted numbers, a JSON string is not a number here.
func isNumberLiteral(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] != '"'
}
