package logbook

import (
	"testing"
	"time"

	"github.com/mannskor/ovingslogg/internal/entry"
)

func snapshotOf(entries ...entry.PracticeEntry) Snapshot {
	return Snapshot{Entries: entries}
}

func session(member, group string, minutes int, ts time.Time) entry.PracticeEntry {
	return entry.PracticeEntry{
		Version:   entry.SchemaVersion,
		Timestamp: ts,
		Date:      ts.Format(entry.DateLayout),
		Group:     group,
		Member:    member,
		Minutes:   minutes,
	}
}

func TestPerMemberTotals(t *testing.T) {
	base := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)
	snapshot := snapshotOf(
		session("A", "", 20, base),
		session("B", "", 30, base.Add(time.Hour)),
	)

	if got := snapshot.MemberTotals("A").TotalMinutes; got != 20 {
		t.Fatalf("expected 20 minutes for A, got %d", got)
	}
	if got := snapshot.MemberTotals("B").TotalMinutes; got != 30 {
		t.Fatalf("expected 30 minutes for B, got %d", got)
	}
	if got := snapshot.Totals().TotalMinutes; got != 50 {
		t.Fatalf("expected 50 minutes overall, got %d", got)
	}
}

func TestLeaderboardSortsByTotalDescending(t *testing.T) {
	base := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)
	snapshot := snapshotOf(
		session("A", "", 20, base),
		session("B", "", 30, base.Add(time.Hour)),
	)

	board := snapshot.Leaderboard()
	if len(board) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(board))
	}
	if board[0].Member != "B" || board[1].Member != "A" {
		t.Fatalf("expected B above A, got %q then %q", board[0].Member, board[1].Member)
	}
}

func TestLeaderboardBreaksTiesByName(t *testing.T) {
	base := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)
	snapshot := snapshotOf(
		session("Mats", "1. bass", 30, base),
		session("Birk", "1. bass", 30, base.Add(time.Minute)),
	)

	board := snapshot.Leaderboard()
	if board[0].Member != "Birk" {
		t.Fatalf("expected alphabetical tiebreak, got %q first", board[0].Member)
	}
}

func TestLeaderboardAggregatesDuplicateSubmissions(t *testing.T) {
	base := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)
	double := session("Mats", "1. bass", 30, base)
	snapshot := snapshotOf(double, double)

	board := snapshot.Leaderboard()
	if len(board) != 1 {
		t.Fatalf("expected 1 row, got %d", len(board))
	}
	if board[0].TotalMinutes != 60 || board[0].Sessions != 2 {
		t.Fatalf("expected both duplicates counted, got %+v", board[0])
	}
}

func TestMemberLogNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)
	snapshot := snapshotOf(
		session("Mats", "1. bass", 10, base),
		session("Birk", "1. bass", 15, base.Add(time.Minute)),
		session("Mats", "1. bass", 20, base.Add(2*time.Minute)),
	)

	log := snapshot.MemberLog("Mats")
	if len(log) != 2 {
		t.Fatalf("expected 2 sessions for Mats, got %d", len(log))
	}
	if log[0].Minutes != 20 || log[1].Minutes != 10 {
		t.Fatalf("expected newest first, got %d then %d", log[0].Minutes, log[1].Minutes)
	}
}

func TestGroupTotalsBucketUngroupedUnderEmptyLabel(t *testing.T) {
	base := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)
	snapshot := snapshotOf(
		session("Mats", "1. bass", 30, base),
		session("Eirik", "2. tenor", 20, base),
		session("Gjest", "", 45, base),
	)

	totals := snapshot.GroupTotals()
	if len(totals) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(totals))
	}
	if totals[0].Group != "" || totals[0].TotalMinutes != 45 {
		t.Fatalf("expected the ungrouped bucket on top, got %+v", totals[0])
	}
}
