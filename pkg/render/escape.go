package render

import "strings"

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

// escapeHTML escapes text for inclusion in element content.
func escapeHTML(s string) string {
	return textEscaper.Replace(s)
}

// escapeAttr escapes an attribute value. Whitespace control characters are
// also encoded so values survive a round trip unchanged.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
