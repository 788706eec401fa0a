// Package render turns stored post bodies into HTML and formats the
// UTC timestamps kept in the database for display.
package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdown is configured for tables and fenced code blocks. Fenced
// blocks keep their info string as a class="language-xx" attribute for
// client-side highlighting. Raw HTML inside the source is never passed
// through: the default renderer drops it, so user markup cannot inject
// script into the page.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		// Conversion only fails on writer errors; fall back to the
		// escaped source rather than dropping the post body.
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(buf.String())
}

// LocalTime converts a stored UTC timestamp into the display timezone.
// The stored value is never mutated, only the rendering.
func LocalTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
