package entry

import "time"

// SchemaVersion is the current wire schema. Every entry this code writes
// carries it; older comments are read back with whatever they carried.
const SchemaVersion = 1

// TimestampLayout is the submission instant at second precision, no zone.
const TimestampLayout = "2006-01-02T15:04:05"

// DateLayout is the calendar day of the session. It is captured separately
// from the timestamp at submission time, so the two may disagree around
// midnight or under clock skew.
const DateLayout = "2006-01-02"

// PracticeEntry is one submitted practice session. Entries are append-only:
// created once at submission, never updated, never deleted by this system.
type PracticeEntry struct {
	Version   int
	Timestamp time.Time
	Date      string
	Group     string
	Member    string
	Minutes   int
	Practiced []string
}
