package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session identifier returned by the init tool",
	}
}

func termProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Search term: literal substring or regular expression depending on mode",
	}
}

func modeProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Match mode: literal (case-insensitive substring) or regex",
		"enum":        []string{"literal", "regex"},
		"default":     "literal",
	}
}

// initFileSearchTool returns the tool definition for init_file_search
func initFileSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "init_file_search",
		Description: "Start a resumable search over the file corpus; returns a session to advance with process_file_batch",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": termProperty(),
				"mode": modeProperty(),
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Directory relative to the corpus root; empty scans the whole corpus",
					"default":     "",
				},
			},
			Required: []string{"term"},
		},
	}
}

// initDBSearchTool returns the tool definition for init_db_search
func initDBSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "init_db_search",
		Description: "Start a resumable search over text columns of the corpus database; returns a session to advance with process_db_batch",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": termProperty(),
				"mode": modeProperty(),
				"tables": map[string]interface{}{
					"type":        "array",
					"description": "Restrict the scan to these tables; empty scans every eligible table",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"term"},
		},
	}
}

// processFileBatchTool returns the tool definition for process_file_batch
func processFileBatchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "process_file_batch",
		Description: "Advance a file search by one budget-bounded batch; call repeatedly until status is completed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}
}

// processDBBatchTool returns the tool definition for process_db_batch
func processDBBatchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "process_db_batch",
		Description: "Advance a database search by one budget-bounded batch; call repeatedly until status is completed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}
}

// cancelFileSearchTool returns the tool definition for cancel_file_search
func cancelFileSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cancel_file_search",
		Description: "Cancel a file search session; idempotent, results gathered so far remain retrievable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}
}

// cancelDBSearchTool returns the tool definition for cancel_db_search
func cancelDBSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cancel_db_search",
		Description: "Cancel a database search session; idempotent, results gathered so far remain retrievable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}
}

// getSearchResultsTool returns the tool definition for get_search_results
func getSearchResultsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_search_results",
		Description: "Return every match record accumulated so far, in discovery order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Expected session kind; the call is rejected if it does not match",
					"enum":        []string{"file", "database"},
				},
				"cleanup": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, remove all stored session state after returning the results",
					"default":     false,
				},
			},
			Required: []string{"session_id"},
		},
	}
}
