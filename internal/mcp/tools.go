package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeSessionNotFound = -32001 // Unknown or expired session id
	ErrorCodeBatchInFlight   = -32002 // Another batch is already running for this session
	ErrorCodeInvalidPattern  = -32005 // Search pattern failed to compile
)

// handleInitFileSearch handles the init_file_search tool invocation
func (s *Server) handleInitFileSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	term, ok := args["term"].(string)
	if !ok || term == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "term parameter is required", map[string]interface{}{
			"param":  "term",
			"reason": "missing or empty",
		})
	}
	mode, err := matchMode(args)
	if err != nil {
		return nil, err
	}
	scope := getStringDefault(args, "scope", "")

	sess, err := s.manager.InitFileSearch(scope, term, mode)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return mcp.NewToolResultText(formatJSON(sessionSummary(sess))), nil
}

// handleInitDBSearch handles the init_db_search tool invocation
func (s *Server) handleInitDBSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	term, ok := args["term"].(string)
	if !ok || term == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "term parameter is required", map[string]interface{}{
			"param":  "term",
			"reason": "missing or empty",
		})
	}
	mode, err := matchMode(args)
	if err != nil {
		return nil, err
	}
	tables := getStringSlice(args, "tables")

	sess, err := s.manager.InitDBSearch(ctx, term, mode, tables)
	if err != nil {
		return nil, mapDomainError(err)
	}

	summary := sessionSummary(sess)
	names := make([]string, 0, len(sess.Tables))
	for _, td := range sess.Tables {
		names = append(names, td.Name)
	}
	summary["tables"] = names
	return mcp.NewToolResultText(formatJSON(summary)), nil
}

// handleProcessFileBatch handles the process_file_batch tool invocation
func (s *Server) handleProcessFileBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionID(request)
	if err != nil {
		return nil, err
	}
	res, err := s.manager.ProcessFileBatch(id)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return mcp.NewToolResultText(formatJSONValue(res)), nil
}

// handleProcessDBBatch handles the process_db_batch tool invocation
func (s *Server) handleProcessDBBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionID(request)
	if err != nil {
		return nil, err
	}
	res, err := s.manager.ProcessDBBatch(ctx, id)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return mcp.NewToolResultText(formatJSONValue(res)), nil
}

// handleCancelSearch handles both cancel tool invocations; cancellation does
// not depend on the session kind.
func (s *Server) handleCancelSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionID(request)
	if err != nil {
		return nil, err
	}
	status, err := s.manager.Cancel(id)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"session_id": id,
		"status":     status,
	})), nil
}

// handleGetSearchResults handles the get_search_results tool invocation
func (s *Server) handleGetSearchResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionID(request)
	if err != nil {
		return nil, err
	}
	args, _ := request.Params.Arguments.(map[string]interface{})
	cleanup := getBoolDefault(args, "cleanup", false)

	sess, records, err := s.manager.GetResults(id)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if kind := getStringDefault(args, "kind", ""); kind != "" && kind != string(sess.Kind) {
		return nil, newMCPError(ErrorCodeInvalidParams, "kind does not match session", map[string]interface{}{
			"param":        "kind",
			"value":        kind,
			"session_kind": string(sess.Kind),
		})
	}

	response := map[string]interface{}{
		"session_id": sess.ID,
		"kind":       sess.Kind,
		"status":     sess.Status,
		"processed":  sess.ProcessedUnits,
		"total":      sess.TotalUnits,
		"progress":   sess.Progress(),
		"truncated":  sess.Truncated,
		"count":      len(records),
		"records":    records,
	}

	if cleanup {
		if err := s.manager.Cleanup(id); err != nil {
			return nil, mapDomainError(err)
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// mapDomainError translates engine sentinel errors into MCP protocol errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, types.ErrSessionNotFound):
		return newMCPError(ErrorCodeSessionNotFound, "session not found", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrBatchInFlight):
		return newMCPError(ErrorCodeBatchInFlight, "a batch is already in flight for this session", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrInvalidPattern):
		return newMCPError(ErrorCodeInvalidPattern, "invalid search pattern", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "operation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// sessionID extracts the required session_id parameter.
func sessionID(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	id, ok := args["session_id"].(string)
	if !ok || id == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "session_id parameter is required", map[string]interface{}{
			"param":  "session_id",
			"reason": "missing or empty",
		})
	}
	return id, nil
}

// matchMode extracts and validates the optional mode parameter.
func matchMode(args map[string]interface{}) (types.MatchMode, error) {
	mode := types.MatchMode(getStringDefault(args, "mode", string(types.ModeLiteral)))
	if err := mode.Validate(); err != nil {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
			"param":   "mode",
			"value":   string(mode),
			"allowed": []string{string(types.ModeLiteral), string(types.ModeRegex)},
		})
	}
	return mode, nil
}

func sessionSummary(sess *types.Session) map[string]interface{} {
	return map[string]interface{}{
		"session_id":  sess.ID,
		"kind":        sess.Kind,
		"status":      sess.Status,
		"total_units": sess.TotalUnits,
		"truncated":   sess.Truncated,
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	return formatJSONValue(data)
}

// formatJSONValue formats any JSON-encodable value as indented JSON
func formatJSONValue(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts an array-of-strings parameter; non-string elements
// are dropped.
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
