// Package types provides shared type definitions for the string-finder engine.
//
// This package defines the domain types used across the search components:
// sessions, table descriptors, match records and batch results.
//
// # Core Types
//
// Session is the durable record of one in-progress or finished search. It is
// created once, mutated only by batch processing and cancellation, and
// expires after a fixed retention window:
//
//	sess := &types.Session{
//	    ID:   uuid.NewString(),
//	    Kind: types.KindFile,
//	    Term: "TODO",
//	    Mode: types.ModeLiteral,
//	}
//
// MatchRecord is one reported occurrence of the search term. File matches
// carry path/line/column identity; database matches carry
// table/column/primary-key identity so a downstream editor can fetch and
// update the exact location later:
//
//	rec := types.MatchRecord{
//	    Kind:    types.KindDatabase,
//	    DB:      &types.DBLocation{Table: "users", Column: "bio", PKColumn: "id", PKValue: "7"},
//	    Preview: "call me <mark>foo</mark>",
//	}
//
// # Status Lifecycle
//
// Sessions move running → completed, running → cancelled, or running → error.
// All of those are terminal: once a session leaves running, batch processing
// never mutates it again; only cleanup removes it.
package types
