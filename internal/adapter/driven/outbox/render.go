package outbox

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
	)

	// Message bodies embed customer-supplied addresses, so the HTML part is
	// sanitized even though goldmark already escapes raw HTML.
	htmlSanitizer = bluemonday.UGCPolicy()
}

// renderHTML converts a markdown message body to sanitized HTML.
// Returns empty string for empty input.
func renderHTML(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}
