// Package store defines the comment-thread contract the logbook writes to
// and provides a local sqlite-backed implementation for runs without a
// GitHub token. The remote thread stays the sole source of truth whenever
// it is configured; the two backends are never active at the same time.
package store

import "context"

// CommentStore is the append-only storage medium: one text comment per
// write, full thread per read.
type CommentStore interface {
	AppendComment(ctx context.Context, issueNumber int, body string) error
	ListComments(ctx context.Context, issueNumber int) ([]string, error)
}
