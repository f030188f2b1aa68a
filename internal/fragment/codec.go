// Package fragment encodes flat parameter sets to and from URL fragments and
// models the addressable location a browser session keeps them in.
package fragment

import (
	"net/url"
	"strings"
)

// Decode parses a URL fragment into a flat key-value mapping.
// A leading "#" is ignored. Pairs that fail to unescape are dropped, empty
// values are treated as absent and, for repeated keys, the first value wins.
// Example: "#query=user&selectedAccessRole=admin"
// Returns: {"query": "user", "selectedAccessRole": "admin"}
func Decode(fragment string) map[string]string {
	result := make(map[string]string)

	raw := strings.TrimPrefix(fragment, "#")
	if raw == "" {
		return result
	}

	// ParseQuery keeps every pair it could decode and reports only the first
	// failure, so the partial result is what we want.
	values, _ := url.ParseQuery(raw)
	for key, vals := range values {
		if key == "" || len(vals) == 0 || vals[0] == "" {
			continue
		}
		result[key] = vals[0]
	}

	return result
}

// Encode serializes a flat mapping into a URL fragment (without the "#").
// Keys with empty values are omitted and keys are emitted in sorted order,
// so equal mappings always encode to the same fragment.
func Encode(params map[string]string) string {
	values := make(url.Values, len(params))
	for key, value := range params {
		if key == "" || value == "" {
			continue
		}
		values.Set(key, value)
	}
	return values.Encode()
}
