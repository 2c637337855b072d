package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// Engine evaluates one search term against units of text. It is immutable
// after construction and safe for reuse across every unit of a session.
type Engine struct {
	term string
	mode types.MatchMode

	lowerTerm string         // literal mode
	re        *regexp.Regexp // regex mode
}

// NewEngine compiles a search term. Regex patterns are validated here, once,
// so the session can be rejected with types.ErrInvalidPattern before any
// scanning starts.
func NewEngine(term string, mode types.MatchMode) (*Engine, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", types.ErrInvalidPattern)
	}
	if err := mode.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidPattern, err)
	}

	e := &Engine{term: term, mode: mode}
	switch mode {
	case types.ModeLiteral:
		e.lowerTerm = strings.ToLower(term)
	case types.ModeRegex:
		re, err := regexp.Compile(term)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidPattern, err)
		}
		e.re = re
	}
	return e, nil
}

// Match reports whether haystack contains the search term. Regex mode fails
// closed: a missing compiled pattern matches nothing.
func (e *Engine) Match(haystack string) bool {
	switch e.mode {
	case types.ModeLiteral:
		return strings.Contains(strings.ToLower(haystack), e.lowerTerm)
	case types.ModeRegex:
		if e.re == nil {
			return false
		}
		return e.re.MatchString(haystack)
	default:
		return false
	}
}

// findFirst returns the byte offsets of the first occurrence of the term in
// s, or ok=false when there is none. Offsets are valid in s itself.
func (e *Engine) findFirst(s string) (start, end int, ok bool) {
	switch e.mode {
	case types.ModeLiteral:
		idx := strings.Index(strings.ToLower(s), e.lowerTerm)
		if idx < 0 {
			return 0, 0, false
		}
		start, end = mapLoweredOffsets(s, idx, idx+len(e.lowerTerm))
		return start, end, true
	case types.ModeRegex:
		if e.re == nil {
			return 0, 0, false
		}
		loc := e.re.FindStringIndex(s)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0], loc[1], true
	default:
		return 0, 0, false
	}
}

// mapLoweredOffsets translates byte offsets found in strings.ToLower(s) back
// into offsets in s. Case folding can change a rune's encoded width (U+0130
// lowercases to two runes), so lowered offsets cannot be applied to the
// original string directly. Offsets that land inside a widened fold snap to
// the enclosing rune's boundaries.
func mapLoweredOffsets(s string, lstart, lend int) (start, end int) {
	start, end = -1, len(s)
	loff := 0
	for o, r := range s {
		if start < 0 && loff >= lstart {
			start = o
		}
		if loff >= lend {
			end = o
			break
		}
		loff += len(strings.ToLower(string(r)))
	}
	if start < 0 {
		start = len(s)
	}
	return start, end
}

// Column returns the 1-based column of the first match in line, or 0 when
// the line does not match.
func (e *Engine) Column(line string) int {
	start, _, ok := e.findFirst(line)
	if !ok {
		return 0
	}
	return start + 1
}
