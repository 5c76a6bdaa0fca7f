package logbook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mannskor/ovingslogg/internal/roster"
)

var testStart = time.Date(2026, 1, 2, 18, 30, 15, 0, time.UTC)

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(ServiceConfig{Roster: roster.DefaultRoster()})
	if err == nil {
		t.Fatalf("expected error for missing store")
	}
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if serviceErr.Code() != "logbook.service.new.missing_store" {
		t.Fatalf("unexpected code: %s", serviceErr.Code())
	}
}

func TestSubmitOnEmptyLog(t *testing.T) {
	fake := newFakeStore()
	clock := newFakeClock(testStart)
	service := newTestService(t, fake, clock)
	ctx := context.Background()

	submitted, err := service.Submit(ctx, 7, SubmitRequest{
		Member:    "Mats",
		Minutes:   30,
		Practiced: []string{"Oppvarming"},
	})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if submitted.Group != "1. bass" {
		t.Fatalf("expected group from roster, got %q", submitted.Group)
	}
	if submitted.Date != "2026-01-02" {
		t.Fatalf("unexpected date: %q", submitted.Date)
	}

	snapshot, err := service.Load(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(snapshot.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(snapshot.Entries))
	}
	totals := snapshot.Totals()
	if totals.TotalMinutes != 30 || totals.Sessions != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestSubmitRejectsUnknownMember(t *testing.T) {
	service := newTestService(t, newFakeStore(), newFakeClock(testStart))

	_, err := service.Submit(context.Background(), 7, SubmitRequest{Member: "Ola", Minutes: 30})
	if !errors.Is(err, roster.ErrUnknownMember) {
		t.Fatalf("expected ErrUnknownMember, got %v", err)
	}
}

func TestSubmitRejectsUnofferedDuration(t *testing.T) {
	service := newTestService(t, newFakeStore(), newFakeClock(testStart))

	_, err := service.Submit(context.Background(), 7, SubmitRequest{Member: "Mats", Minutes: 17})
	if !errors.Is(err, roster.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestSubmitRejectsItemOutsideRepertoire(t *testing.T) {
	service := newTestService(t, newFakeStore(), newFakeClock(testStart))

	_, err := service.Submit(context.Background(), 7, SubmitRequest{
		Member:    "Mats",
		Minutes:   30,
		Practiced: []string{"Bohemian Rhapsody"},
	})
	if !errors.Is(err, roster.ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
}

func TestSubmitFailurePropagatesAndLeavesLogUnchanged(t *testing.T) {
	fake := newFakeStore()
	clock := newFakeClock(testStart)
	service := newTestService(t, fake, clock)
	ctx := context.Background()

	if _, err := service.Submit(ctx, 7, SubmitRequest{Member: "Mats", Minutes: 30}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	before, err := service.Load(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	fake.appendErr = errors.New("remote said no")
	_, err = service.Submit(ctx, 7, SubmitRequest{Member: "Birk", Minutes: 45})
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serviceErr.Code() != "logbook.submit.append_failed" {
		t.Fatalf("unexpected code: %s", serviceErr.Code())
	}

	after, err := service.Load(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(after.Entries) != len(before.Entries) {
		t.Fatalf("log changed after failed append: %d vs %d", len(after.Entries), len(before.Entries))
	}
}

func TestLoadWithinTTLSkipsRemoteCall(t *testing.T) {
	fake := newFakeStore()
	clock := newFakeClock(testStart)
	service := newTestService(t, fake, clock)
	ctx := context.Background()

	if _, err := service.Submit(ctx, 7, SubmitRequest{Member: "Mats", Minutes: 30}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	first, err := service.Load(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	clock.Advance(10 * time.Second)
	second, err := service.Load(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if fake.listCallCount() != 1 {
		t.Fatalf("expected 1 remote list call, got %d", fake.listCallCount())
	}
	if len(first.Entries) != len(second.Entries) || !second.FetchedAt.Equal(first.FetchedAt) {
		t.Fatalf("expected identical cached snapshot")
	}
}

func TestLoadAfterTTLRefetches(t *testing.T) {
	fake := newFakeStore()
	clock := newFakeClock(testStart)
	service := newTestService(t, fake, clock)
	ctx := context.Background()

	if _, err := service.Load(ctx, 7); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	clock.Advance(31 * time.Second)
	if _, err := service.Load(ctx, 7); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if fake.listCallCount() != 2 {
		t.Fatalf("expected stale cache to refetch, got %d calls", fake.listCallCount())
	}
}

func TestSubmitInvalidatesCacheSoOwnEntryIsVisible(t *testing.T) {
	fake := newFakeStore()
	clock := newFakeClock(testStart)
	service := newTestService(t, fake, clock)
	ctx := context.Background()

	if _, err := service.Load(ctx, 7); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if _, err := service.Submit(ctx, 7, SubmitRequest{Member: "Mats", Minutes: 30}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	snapshot, err := service.Load(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if fake.listCallCount() != 2 {
		t.Fatalf("expected a fresh remote call after append, got %d calls", fake.listCallCount())
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].Member != "Mats" {
		t.Fatalf("expected just-submitted entry to be visible: %+v", snapshot.Entries)
	}
}

func TestLoadFailurePropagates(t *testing.T) {
	fake := newFakeStore()
	fake.listErr = errors.New("boom")
	service := newTestService(t, fake, newFakeClock(testStart))

	_, err := service.Load(context.Background(), 7)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serviceErr.Code() != "logbook.load.list_failed" {
		t.Fatalf("unexpected code: %s", serviceErr.Code())
	}
}

func TestLoadSkipsForeignComments(t *testing.T) {
	fake := newFakeStore()
	fake.comments[7] = []string{"great initiative!", "see you at rehearsal"}
	clock := newFakeClock(testStart)
	service := newTestService(t, fake, clock)
	ctx := context.Background()

	if _, err := service.Submit(ctx, 7, SubmitRequest{Member: "Mats", Minutes: 30}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	snapshot, err := service.Load(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(snapshot.Entries) != 1 {
		t.Fatalf("expected chatter to be skipped, got %d entries", len(snapshot.Entries))
	}
}
