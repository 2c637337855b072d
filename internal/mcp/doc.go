// Package mcp implements the Model Context Protocol (MCP) server for the
// string-finder engine.
//
// The server exposes seven tools to MCP clients:
//   - init_file_search: start a resumable search over the file corpus
//   - init_db_search: start a resumable search over the corpus database
//   - process_file_batch / process_db_batch: advance a session by one
//     budget-bounded batch
//   - cancel_file_search / cancel_db_search: cancel a session (idempotent)
//   - get_search_results: retrieve all accumulated match records, optionally
//     cleaning the session up afterwards
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// stdout carries the protocol; all logging goes to stderr.
//
// # Search flow
//
// A search is created once, then advanced batch by batch:
//
//	init_file_search  {"term": "foo", "mode": "literal", "scope": "docs"}
//	  → {"session_id": "...", "status": "running", "total_units": 412}
//	process_file_batch {"session_id": "..."}   (repeat until completed)
//	  → {"status": "running", "processed": 97, "progress": 23.5, "records": [...]}
//	get_search_results {"session_id": "...", "cleanup": true}
//	  → {"count": 31, "records": [...]}
//
// Each batch is bounded by the configured time and memory budget; the client
// decides the pacing between batches. Errors carry JSON-RPC codes: -32001
// unknown session, -32002 batch already in flight, -32005 invalid pattern.
//
// The engine performs no authorization; the host caller is expected to
// authorize each tool invocation.
package mcp
