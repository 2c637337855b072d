// Package match implements per-unit matching and preview rendering.
//
// An Engine is compiled once per session from the search term and mode, so a
// bad regex is rejected at session creation rather than degrading every
// batch:
//
//	eng, err := match.NewEngine("foo.*bar", types.ModeRegex)
//	if err != nil {
//	    // types.ErrInvalidPattern
//	}
//
// Literal mode is case-insensitive substring containment. Regex mode
// evaluates the caller-supplied pattern and fails closed: an Engine that
// somehow lacks a compiled pattern matches nothing, it never panics.
//
// # Previews
//
// Preview produces a bounded snippet with the match highlighted:
//
//	snippet := eng.Preview("  <p>call me foo</p>  ")
//	// "call me <mark>foo</mark>"
//
// Markup is stripped (bluemonday strict policy), whitespace runs collapse to
// a single space, and long content is windowed around the first match with
// ellipsis markers. The rendered window is HTML-escaped; untrusted corpus
// content is never emitted as markup.
//
// # Structured values
//
// Walk decodes a value that may be a serialized composite (JSON object or
// array) and visits every scalar leaf with a structural path such as
// "[2]->field". Traversal uses an explicit work stack with a depth limit, so
// corrupt or adversarial nesting cannot exhaust the goroutine stack. Values
// that do not decode to a composite are left to the caller to treat as plain
// text.
package match
