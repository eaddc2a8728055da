package main

import "context"

// SearchIndex is the small interface the action-log topic handler indexes
// records through (SPEC_FULL.md §1.2: "the search backend is an external
// collaborator reached through a small interface so either backend can be
// wired"). Keeping it this narrow is what lets the core stay free of a
// durable-state dependency while the demo app still has one.
type SearchIndex interface {
	Index(ctx context.Context, record wireRecord) error
	Close() error
}
