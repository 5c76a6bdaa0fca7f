package logbook

import (
	"sort"
	"time"

	"github.com/mannskor/ovingslogg/internal/entry"
)

// Snapshot is the decoded log at a point in time, in thread order. It is
// rebuilt per read, never patched incrementally, so there is no drift
// beyond cache staleness. Duplicate submissions are preserved as-is.
type Snapshot struct {
	Entries   []entry.PracticeEntry
	FetchedAt time.Time
}

// Totals summarizes a set of sessions.
type Totals struct {
	TotalMinutes int
	Sessions     int
}

// MemberSummary aggregates one member's sessions.
type MemberSummary struct {
	Member       string
	Group        string
	TotalMinutes int
	Sessions     int
}

// MemberLog returns the member's sessions, most recent first. Entries with
// equal timestamps keep thread order relative to each other.
func (s Snapshot) MemberLog(member string) []entry.PracticeEntry {
	var filtered []entry.PracticeEntry
	for _, e := range s.Entries {
		if e.Member == member {
			filtered = append(filtered, e)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})
	return filtered
}

// GroupLog returns all sessions logged under the given group, in thread
// order. Entries without a group fall under the empty section label.
func (s Snapshot) GroupLog(group string) []entry.PracticeEntry {
	var filtered []entry.PracticeEntry
	for _, e := range s.Entries {
		if e.Group == group {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Totals sums minutes and sessions over the whole snapshot.
func (s Snapshot) Totals() Totals {
	totals := Totals{Sessions: len(s.Entries)}
	for _, e := range s.Entries {
		totals.TotalMinutes += e.Minutes
	}
	return totals
}

// MemberTotals sums minutes and sessions for one member.
func (s Snapshot) MemberTotals(member string) Totals {
	var totals Totals
	for _, e := range s.Entries {
		if e.Member == member {
			totals.TotalMinutes += e.Minutes
			totals.Sessions++
		}
	}
	return totals
}

// Leaderboard aggregates per member and sorts by total minutes descending,
// ties broken by name.
func (s Snapshot) Leaderboard() []MemberSummary {
	index := make(map[string]*MemberSummary)
	var order []string
	for _, e := range s.Entries {
		summary, ok := index[e.Member]
		if !ok {
			summary = &MemberSummary{Member: e.Member}
			index[e.Member] = summary
			order = append(order, e.Member)
		}
		summary.TotalMinutes += e.Minutes
		summary.Sessions++
		if e.Group != "" {
			summary.Group = e.Group
		}
	}

	board := make([]MemberSummary, 0, len(order))
	for _, member := range order {
		board = append(board, *index[member])
	}
	sort.SliceStable(board, func(i, j int) bool {
		if board[i].TotalMinutes != board[j].TotalMinutes {
			return board[i].TotalMinutes > board[j].TotalMinutes
		}
		return board[i].Member < board[j].Member
	})
	return board
}

// GroupTotals aggregates per group, sorted by total minutes descending,
// ties broken by group name. Ungrouped entries aggregate under "".
func (s Snapshot) GroupTotals() []MemberSummary {
	index := make(map[string]*MemberSummary)
	var order []string
	for _, e := range s.Entries {
		summary, ok := index[e.Group]
		if !ok {
			summary = &MemberSummary{Group: e.Group}
			index[e.Group] = summary
			order = append(order, e.Group)
		}
		summary.TotalMinutes += e.Minutes
		summary.Sessions++
	}

	totals := make([]MemberSummary, 0, len(order))
	for _, group := range order {
		totals = append(totals, *index[group])
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].TotalMinutes != totals[j].TotalMinutes {
			return totals[i].TotalMinutes > totals[j].TotalMinutes
		}
		return totals[i].Group < totals[j].Group
	})
	return totals
}
