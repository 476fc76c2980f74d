package helpers

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// StrictHTMLPolicy returns a singleton bluemonday policy that strips every
// HTML element and attribute. Operator-pasted fallback content is treated
// as untrusted markup and reduced to plain text through it.
func StrictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// SanitizeText removes every HTML tag from s and trims surrounding
// whitespace, yielding a safe plain-text representation.
func SanitizeText(s string) string {
	return strings.TrimSpace(StrictHTMLPolicy().Sanitize(s))
}
