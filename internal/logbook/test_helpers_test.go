package logbook

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mannskor/ovingslogg/internal/roster"
)

// fakeStore is an in-memory CommentStore that counts remote calls.
type fakeStore struct {
	mu        sync.Mutex
	comments  map[int][]string
	listCalls int
	appendErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{comments: make(map[int][]string)}
}

func (f *fakeStore) AppendComment(_ context.Context, issueNumber int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.comments[issueNumber] = append(f.comments[issueNumber], body)
	return nil
}

func (f *fakeStore) ListComments(_ context.Context, issueNumber int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	copied := make([]string, len(f.comments[issueNumber]))
	copy(copied, f.comments[issueNumber])
	return copied, nil
}

func (f *fakeStore) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// fakeClock lets tests move time forward past the cache TTL.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, fake *fakeStore, clock *fakeClock) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{
		Store:    fake,
		Roster:   roster.DefaultRoster(),
		Clock:    clock.Now,
		CacheTTL: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return service
}
