package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
	helpPolicyOnce  sync.Once
	helpPolicy      *bluemonday.Policy
)

// SanitizeLabel strips any markup from bundle-supplied display strings. Labels
// render as plain text in every front end, so nothing survives but text.
func SanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(labelPolicy.Sanitize(trimmed))
}

// SanitizeHelp allows the minimal inline markup help texts use in existing
// bundles while stripping anything executable.
func SanitizeHelp(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "i", "em", "strong", "br", "code")
		helpPolicy = policy
	})
	return strings.TrimSpace(helpPolicy.Sanitize(trimmed))
}
