package match

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultPreviewWidth is the rendered snippet width in characters.
const DefaultPreviewWidth = 200

const (
	ellipsis  = "…"
	markOpen  = "<mark>"
	markClose = "</mark>"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	wsRun       = regexp.MustCompile(`\s+`)
)

// Preview renders a bounded snippet of content with the first match
// highlighted, using the default width.
func (e *Engine) Preview(content string) string {
	return e.PreviewWidth(content, DefaultPreviewWidth)
}

// PreviewWidth strips markup, collapses whitespace, centers a window of
// width characters on the first match, and wraps the matched substring in
// <mark> tags. Everything rendered is escaped; corpus content never reaches
// the consumer as live markup.
func (e *Engine) PreviewWidth(content string, width int) string {
	if width <= 0 {
		width = DefaultPreviewWidth
	}

	// Strip tags, then undo the sanitizer's entity escaping so matching and
	// windowing operate on plain text. Escaping happens once, at render.
	plain := html.UnescapeString(stripPolicy.Sanitize(content))
	plain = strings.TrimSpace(wsRun.ReplaceAllString(plain, " "))
	if plain == "" {
		return ""
	}

	start, end, matched := e.findFirst(plain)

	runes := []rune(plain)
	mStart, mEnd := 0, 0
	if matched {
		mStart = utf8.RuneCountInString(plain[:start])
		mEnd = utf8.RuneCountInString(plain[:end])
	}

	// Window selection: whole string when it fits, otherwise width runes
	// centered on the match start.
	wStart, wEnd := 0, len(runes)
	if len(runes) > width {
		wStart = mStart - width/2
		if wStart < 0 {
			wStart = 0
		}
		wEnd = wStart + width
		if wEnd > len(runes) {
			wEnd = len(runes)
			wStart = wEnd - width
		}
	}

	var b strings.Builder
	if wStart > 0 {
		b.WriteString(ellipsis)
	}
	if matched {
		hs := mStart
		if hs < wStart {
			hs = wStart
		}
		he := mEnd
		if he > wEnd {
			he = wEnd
		}
		b.WriteString(html.EscapeString(string(runes[wStart:hs])))
		b.WriteString(markOpen)
		b.WriteString(html.EscapeString(string(runes[hs:he])))
		b.WriteString(markClose)
		b.WriteString(html.EscapeString(string(runes[he:wEnd])))
	} else {
		b.WriteString(html.EscapeString(string(runes[wStart:wEnd])))
	}
	if wEnd < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}
