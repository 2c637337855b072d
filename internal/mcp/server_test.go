package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otw-tahir/otw-string-finder/internal/filescan"
	"github.com/otw-tahir/otw-string-finder/internal/session"
	"github.com/otw-tahir/otw-string-finder/internal/store"
)

func newFileServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cfg := session.Config{
		TimeBudget:         time.Minute,
		UnitPageSize:       500,
		RowPageSize:        100,
		MaxResultsPerBatch: 500,
	}
	manager := session.NewManager(cfg, store.NewMemory(time.Hour), filescan.NewEnumerator(root, 0), nil)
	return NewServer(manager)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool result should be text content")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireMCPCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok, "expected MCPError, got %T", err)
	assert.Equal(t, code, mcpErr.Code)
}

func TestFileSearchFlow(t *testing.T) {
	s := newFileServer(t, map[string]string{
		"a.txt":     "one\ntwo\nthree foo\n",
		"sub/c.txt": "foo again\n",
	})
	ctx := context.Background()

	result, err := s.handleInitFileSearch(ctx, callRequest("init_file_search", map[string]interface{}{
		"term": "foo",
	}))
	require.NoError(t, err)
	init := decodeResult(t, result)
	id, _ := init["session_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "running", init["status"])
	assert.EqualValues(t, 2, init["total_units"])

	result, err = s.handleProcessFileBatch(ctx, callRequest("process_file_batch", map[string]interface{}{
		"session_id": id,
	}))
	require.NoError(t, err)
	batch := decodeResult(t, result)
	assert.Equal(t, "completed", batch["status"])
	assert.EqualValues(t, 100, batch["progress"])

	result, err = s.handleGetSearchResults(ctx, callRequest("get_search_results", map[string]interface{}{
		"session_id": id,
		"cleanup":    true,
	}))
	require.NoError(t, err)
	results := decodeResult(t, result)
	assert.EqualValues(t, 2, results["count"])

	// cleanup=true removed the session; further reads miss.
	_, err = s.handleGetSearchResults(ctx, callRequest("get_search_results", map[string]interface{}{
		"session_id": id,
	}))
	requireMCPCode(t, err, ErrorCodeSessionNotFound)
}

func TestGetSearchResults_KindFilter(t *testing.T) {
	s := newFileServer(t, map[string]string{"a.txt": "foo\n"})
	ctx := context.Background()

	result, err := s.handleInitFileSearch(ctx, callRequest("init_file_search", map[string]interface{}{
		"term": "foo",
	}))
	require.NoError(t, err)
	id, _ := decodeResult(t, result)["session_id"].(string)
	require.NotEmpty(t, id)

	// A matching kind passes through.
	result, err = s.handleGetSearchResults(ctx, callRequest("get_search_results", map[string]interface{}{
		"session_id": id,
		"kind":       "file",
	}))
	require.NoError(t, err)
	assert.Equal(t, "file", decodeResult(t, result)["kind"])

	// A mismatched kind is rejected without touching the session.
	_, err = s.handleGetSearchResults(ctx, callRequest("get_search_results", map[string]interface{}{
		"session_id": id,
		"kind":       "database",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestCancelSearch_Idempotent(t *testing.T) {
	s := newFileServer(t, map[string]string{"a.txt": "foo\n"})
	ctx := context.Background()

	// Cancelling an id that never existed still acknowledges.
	result, err := s.handleCancelSearch(ctx, callRequest("cancel_file_search", map[string]interface{}{
		"session_id": "no-such-id",
	}))
	require.NoError(t, err)
	ack := decodeResult(t, result)
	assert.Equal(t, "cancelled", ack["status"])
}

func TestParameterValidation(t *testing.T) {
	s := newFileServer(t, map[string]string{"a.txt": "foo\n"})
	ctx := context.Background()

	_, err := s.handleInitFileSearch(ctx, callRequest("init_file_search", map[string]interface{}{}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleInitFileSearch(ctx, callRequest("init_file_search", map[string]interface{}{
		"term": "foo",
		"mode": "fuzzy",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	_, err = s.handleProcessFileBatch(ctx, callRequest("process_file_batch", map[string]interface{}{}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestDomainErrorMapping(t *testing.T) {
	s := newFileServer(t, map[string]string{"a.txt": "foo\n"})
	ctx := context.Background()

	_, err := s.handleInitFileSearch(ctx, callRequest("init_file_search", map[string]interface{}{
		"term": "[unclosed",
		"mode": "regex",
	}))
	requireMCPCode(t, err, ErrorCodeInvalidPattern)

	_, err = s.handleProcessFileBatch(ctx, callRequest("process_file_batch", map[string]interface{}{
		"session_id": "no-such-id",
	}))
	requireMCPCode(t, err, ErrorCodeSessionNotFound)
}

func TestGetStringSlice(t *testing.T) {
	args := map[string]interface{}{
		"tables": []interface{}{"users", "posts", 7},
	}
	assert.Equal(t, []string{"users", "posts"}, getStringSlice(args, "tables"))
	assert.Nil(t, getStringSlice(args, "missing"))
}
