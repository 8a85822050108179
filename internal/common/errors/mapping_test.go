package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mapping Table Tests
// ==========================

func TestMappingCompleteness(t *testing.T) {
	for _, kind := range AllKinds() {
		t.Run(string(kind), func(t *testing.T) {
			m, ok := mappings[kind]
			require.True(t, ok, "kind has no mapping entry")

			assert.NotEmpty(t, m.UserMessage)
			assert.GreaterOrEqual(t, m.HTTPStatus, 100)
			assert.Less(t, m.HTTPStatus, 599)
			assert.NotEmpty(t, string(m.Category))

			if m.Severity < SeverityCritical {
				assert.NotEmpty(t, m.ActionHint, "non-critical kinds must tell the user what to do")
			}
		})
	}
}

func TestMappingHasNoUndeclaredKinds(t *testing.T) {
	declared := make(map[ErrorKind]bool)
	for _, kind := range AllKinds() {
		declared[kind] = true
	}
	for kind := range mappings {
		assert.True(t, declared[kind], "mapping for undeclared kind %s", kind)
	}
}

func TestUserMessagesContainNoJargon(t *testing.T) {
	// Starting denylist, not exhaustive.
	jargon := []string{
		"exception", "stack", "trace", "null", "undefined",
		"sql", "api key", "token", "500", "404", "401", "403",
	}

	for kind, m := range mappings {
		msg := strings.ToLower(m.UserMessage)
		hint := strings.ToLower(m.ActionHint)
		for _, term := range jargon {
			assert.NotContains(t, msg, term, "user message for %s leaks %q", kind, term)
			assert.NotContains(t, hint, term, "action hint for %s leaks %q", kind, term)
		}
	}
}

func TestMappingFor_UnknownKindFallsBack(t *testing.T) {
	m := MappingFor(ErrorKind("NO_SUCH_KIND"))
	assert.Equal(t, mappings[KindUnexpected], m)
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryAuthentication, CategoryOf(KindAuthTokenExpired))
	assert.Equal(t, CategoryPayment, CategoryOf(KindCardDeclined))
	assert.Equal(t, ErrorCategory(""), CategoryOf(ErrorKind("NO_SUCH_KIND")))
}

func TestSeverityOrdering(t *testing.T) {
	assert.Less(t, SeverityInfo, SeverityWarning)
	assert.Less(t, SeverityWarning, SeverityError)
	assert.Less(t, SeverityError, SeverityCritical)
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
}
