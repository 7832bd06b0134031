package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PrettyJSON renders v with two space indentation, in struct field order and without
// HTML escaping.
func PrettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// CompactBody renders a raw response body on a single line. Bodies that are not JSON are
// returned as received.
func CompactBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return string(trimmed)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
