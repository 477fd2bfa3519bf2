// internal/content/sanitize.go
//
// HTML sanitization policies.
//
// Context
// -------
// Descriptions and bodies arrive as HTML fragments from the admin editor.
// Each surface gets an explicit allow-list via bluemonday; everything not
// listed is stripped, never escaped-and-kept.
//
//   • SanitizeInline   – descriptions: <b> only.
//   • SanitizeBody     – article content: b, ul, ol, li, a, p, br.
//   • SanitizeProject  – project content: body tags plus h2 and h3.
//
// Notes
// -----
// • Policies are package-level and immutable after init; bluemonday policies
//   are safe for concurrent use once built.
package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	inlinePolicy  = bluemonday.NewPolicy().AllowElements("b")
	bodyPolicy    = newBodyPolicy()
	projectPolicy = newBodyPolicy().AllowElements("h2", "h3")
)

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "ul", "ol", "li", "p", "br")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// SanitizeInline trims s and strips every tag except <b>.
func SanitizeInline(s string) string {
	return inlinePolicy.Sanitize(strings.TrimSpace(s))
}

// SanitizeBody trims s and keeps the article-body allow-list.
func SanitizeBody(s string) string {
	return bodyPolicy.Sanitize(strings.TrimSpace(s))
}

// SanitizeProject trims s and keeps the project-body allow-list.
func SanitizeProject(s string) string {
	return projectPolicy.Sanitize(strings.TrimSpace(s))
}
