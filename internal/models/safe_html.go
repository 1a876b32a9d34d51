package models

import (
	"github.com/microcosm-cc/bluemonday"
)

// SafeHTML is markup that has been through the sanitizer and may be
// rendered as rich text by the browser.
type SafeHTML string

// summaryPolicy allows the formatting and links the upstream summaries use
// and strips scripts, styles, event handlers and iframes.
var summaryPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// SanitizeHTML is the only way to produce a SafeHTML value from raw markup.
func SanitizeHTML(raw string) SafeHTML {
	if raw == "" {
		return ""
	}
	return SafeHTML(summaryPolicy.Sanitize(raw))
}

// String returns the sanitized markup.
func (h SafeHTML) String() string {
	return string(h)
}
