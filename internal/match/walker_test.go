package match

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_NotComposite(t *testing.T) {
	for _, raw := range []string{"", "   ", "plain text", "42", `"quoted"`, "true"} {
		_, ok := Walk(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestWalk_MalformedFallsBack(t *testing.T) {
	_, ok := Walk(`{"broken": `)
	assert.False(t, ok)

	_, ok = Walk(`[1, 2,`)
	assert.False(t, ok)
}

func TestWalk_FlatArray(t *testing.T) {
	leaves, ok := Walk(`["a", "b", 3, true, null]`)
	require.True(t, ok)
	require.Len(t, leaves, 4)

	assert.Equal(t, Leaf{Path: "[0]", Value: "a"}, leaves[0])
	assert.Equal(t, Leaf{Path: "[1]", Value: "b"}, leaves[1])
	assert.Equal(t, Leaf{Path: "[2]", Value: "3"}, leaves[2])
	assert.Equal(t, Leaf{Path: "[3]", Value: "true"}, leaves[3])
}

func TestWalk_ObjectKeysSorted(t *testing.T) {
	leaves, ok := Walk(`{"zeta": "z", "alpha": "a"}`)
	require.True(t, ok)
	require.Len(t, leaves, 2)

	assert.Equal(t, "->alpha", leaves[0].Path)
	assert.Equal(t, "->zeta", leaves[1].Path)
}

func TestWalk_NestedThreeLevels(t *testing.T) {
	leaves, ok := Walk(`{"a": [null, null, {"field": "needle-bearing string"}]}`)
	require.True(t, ok)
	require.Len(t, leaves, 1)

	assert.Equal(t, "->a[2]->field", leaves[0].Path)
	assert.Equal(t, "needle-bearing string", leaves[0].Value)
}

func TestWalk_DepthLimit(t *testing.T) {
	// Nesting past the limit is dropped without error.
	deep := strings.Repeat("[", 60) + `"leaf"` + strings.Repeat("]", 60)
	leaves, ok := Walk(deep)
	require.True(t, ok)
	assert.Empty(t, leaves)
}

func TestWalk_NumberFidelity(t *testing.T) {
	leaves, ok := Walk(`[9007199254740993, 1.50]`)
	require.True(t, ok)
	require.Len(t, leaves, 2)

	assert.Equal(t, "9007199254740993", leaves[0].Value)
	assert.Equal(t, "1.50", leaves[1].Value)
}

func TestWalk_LargeArrayOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 50; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `"v%d"`, i)
	}
	b.WriteString("]")

	leaves, ok := Walk(b.String())
	require.True(t, ok)
	require.Len(t, leaves, 50)
	for i, l := range leaves {
		assert.Equal(t, fmt.Sprintf("[%d]", i), l.Path)
		assert.Equal(t, fmt.Sprintf("v%d", i), l.Value)
	}
}
