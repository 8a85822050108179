package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// RedactionMarker replaces any value judged sensitive during sanitization.
const RedactionMarker = "***REDACTED***"

// maxSanitizeDepth bounds recursion so cyclic or adversarially nested input
// cannot blow the stack.
const maxSanitizeDepth = 16

var (
	// sensitiveKeyPattern matches credential-like mapping keys regardless of
	// nesting depth. Matching is case-insensitive and substring-based so
	// "stripe_api_key" and "AccessToken" are both caught.
	sensitiveKeyPattern = regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key|authorization|credential|private[_-]?key|credit[_-]?card|card[_-]?number|cvv|ssn)`)

	// cardRunPattern matches 13-19 contiguous digits, the length range of
	// payment card numbers.
	cardRunPattern = regexp.MustCompile(`\d{13,19}`)
)

// Sanitize recursively redacts credential-like values and payment-card-like
// digit runs from v. It is idempotent and never panics; on unwalkable input
// it falls back to the input's string form.
func Sanitize(v interface{}) (out interface{}) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprint(v)
		}
	}()
	return sanitizeValue(v, 0)
}

// SanitizeString redacts card-like digit runs from free text.
func SanitizeString(s string) string {
	return cardRunPattern.ReplaceAllString(s, RedactionMarker)
}

// IsSensitiveKey reports whether a mapping key names credential-like data.
func IsSensitiveKey(key string) bool {
	return sensitiveKeyPattern.MatchString(key)
}

func sanitizeValue(v interface{}, depth int) interface{} {
	if depth > maxSanitizeDepth {
		return RedactionMarker
	}

	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return SanitizeString(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			if IsSensitiveKey(k) {
				out[k] = RedactionMarker
				continue
			}
			out[k] = sanitizeValue(item, depth+1)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, item := range val {
			if IsSensitiveKey(k) {
				out[k] = RedactionMarker
				continue
			}
			out[k] = SanitizeString(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item, depth+1)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = SanitizeString(item)
		}
		return out
	case error:
		return SanitizeString(val.Error())
	case fmt.Stringer:
		return SanitizeString(val.String())
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		// Scalars cannot embed a card run without being a card number
		// themselves; format and re-check digit length.
		s := fmt.Sprint(val)
		if len(strings.TrimLeft(s, "-")) >= 13 {
			return SanitizeString(s)
		}
		return val
	default:
		return SanitizeString(fmt.Sprint(val))
	}
}
