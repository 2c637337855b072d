package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/otw-tahir/otw-string-finder/internal/session"
)

const (
	// ServerName is the MCP server name
	ServerName = "string-finder"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	manager *session.Manager
}

// NewServer creates a new MCP server instance around an existing session
// manager. The manager owns all corpus handles; the server is pure adapter.
func NewServer(manager *session.Manager) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		manager: manager,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(initFileSearchTool(), s.handleInitFileSearch)
	s.mcp.AddTool(initDBSearchTool(), s.handleInitDBSearch)
	s.mcp.AddTool(processFileBatchTool(), s.handleProcessFileBatch)
	s.mcp.AddTool(processDBBatchTool(), s.handleProcessDBBatch)
	s.mcp.AddTool(cancelFileSearchTool(), s.handleCancelSearch)
	s.mcp.AddTool(cancelDBSearchTool(), s.handleCancelSearch)
	s.mcp.AddTool(getSearchResultsTool(), s.handleGetSearchResults)
}
