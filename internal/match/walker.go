package match

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// maxWalkDepth bounds traversal of decoded composites. Corrupt or
// adversarial nesting beyond this is dropped, not an error.
const maxWalkDepth = 32

// Leaf is one scalar found inside a decoded composite value.
type Leaf struct {
	// Path names the leaf's position: "[i]" per array element, "->key" per
	// object member, concatenated outermost first.
	Path  string
	Value string
}

// Walk attempts to decode raw as a serialized composite (JSON object or
// array). On success it returns every scalar leaf in deterministic order
// (array order; object keys sorted) and ok=true. Scalars, empty input and
// undecodable input return ok=false — the caller treats the raw value as
// plain text.
func Walk(raw string) ([]Leaf, bool) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}
	// Cheap shape check before paying for a decode: composites start with
	// '{' or '['.
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, false
	}
	switch root.(type) {
	case map[string]any, []any:
	default:
		return nil, false
	}

	type frame struct {
		path  string
		value any
		depth int
	}

	// Explicit work stack; children pushed in reverse so leaves come out in
	// document order.
	stack := []frame{{value: root}}
	var leaves []Leaf
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxWalkDepth {
			continue
		}

		switch v := f.value.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for i := len(keys) - 1; i >= 0; i-- {
				k := keys[i]
				stack = append(stack, frame{
					path:  f.path + "->" + k,
					value: v[k],
					depth: f.depth + 1,
				})
			}
		case []any:
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					path:  f.path + "[" + strconv.Itoa(i) + "]",
					value: v[i],
					depth: f.depth + 1,
				})
			}
		case string:
			leaves = append(leaves, Leaf{Path: f.path, Value: v})
		case json.Number:
			leaves = append(leaves, Leaf{Path: f.path, Value: v.String()})
		case bool:
			leaves = append(leaves, Leaf{Path: f.path, Value: strconv.FormatBool(v)})
		case nil:
			// null carries no searchable text
		}
	}
	return leaves, true
}
