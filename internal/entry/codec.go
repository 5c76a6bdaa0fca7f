package entry

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MarkerBegin and MarkerEnd delimit an embedded entry inside a comment body.
// They are deliberately unlikely to occur in ordinary prose, so a block can
// be located inside an arbitrarily large free-text container.
const (
	MarkerBegin = "OVINGSLOGG_V1_BEGIN"
	MarkerEnd   = "OVINGSLOGG_V1_END"
)

// blockPattern tolerates surrounding whitespace and the markdown fence
// between the markers. Non-greedy, so the first well-delimited object wins.
var blockPattern = regexp.MustCompile(
	`(?s)` + MarkerBegin + "\\s*```json\\s*(\\{.*?\\})\\s*```\\s*" + MarkerEnd,
)

type wirePayload struct {
	Version   int      `json:"v"`
	Timestamp string   `json:"ts"`
	Date      string   `json:"date"`
	Group     string   `json:"group,omitempty"`
	Member    string   `json:"member"`
	Minutes   int      `json:"minutes"`
	Practiced []string `json:"practiced"`
}

// Encode serializes the entry as a marker-delimited block suitable for
// posting as an issue comment. The output is self-contained and parses back
// regardless of surrounding comment text.
func Encode(e PracticeEntry) (string, error) {
	payload := wirePayload{
		Version:   e.Version,
		Timestamp: e.Timestamp.Format(TimestampLayout),
		Date:      e.Date,
		Group:     e.Group,
		Member:    e.Member,
		Minutes:   e.Minutes,
		Practiced: e.Practiced,
	}
	if payload.Practiced == nil {
		payload.Practiced = []string{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return "", err
	}
	body := strings.TrimRight(buf.String(), "\n")

	return MarkerBegin + "\n```json\n" + body + "\n```\n" + MarkerEnd, nil
}

// DecodeAll extracts entries from a collection of free-text blobs, in input
// order. Blobs without a marker block, or with an unparseable one, are
// skipped; a corrupt comment must never abort loading the rest of the log.
// Skips are logged at debug level only.
func DecodeAll(blobs []string, logger *zap.Logger) []PracticeEntry {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries := make([]PracticeEntry, 0, len(blobs))
	for index, blob := range blobs {
		decoded, ok := decodeOne(blob)
		if !ok {
			if strings.Contains(blob, MarkerBegin) {
				logger.Debug("skipping malformed log block", zap.Int("comment_index", index))
			}
			continue
		}
		entries = append(entries, decoded)
	}
	return entries
}

// decodeOne takes the first marker-delimited region of the blob and coerces
// its fields. Wrong-shaped fields degrade to their zero value rather than
// rejecting the whole entry.
func decodeOne(blob string) (PracticeEntry, bool) {
	match := blockPattern.FindStringSubmatch(blob)
	if match == nil {
		return PracticeEntry{}, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(match[1]), &raw); err != nil {
		return PracticeEntry{}, false
	}

	decoded := PracticeEntry{
		Version:   coerceInt(raw["v"]),
		Date:      coerceDate(raw["date"]),
		Member:    coerceString(raw["member"]),
		Minutes:   coerceInt(raw["minutes"]),
		Practiced: coerceStrings(raw["practiced"]),
	}
	decoded.Timestamp = coerceTimestamp(raw["ts"])

	// Grouped and ungrouped log variants used different keys for the
	// voice section; accept both on read.
	if group := coerceString(raw["group"]); group != "" {
		decoded.Group = group
	} else {
		decoded.Group = coerceString(raw["voice_group"])
	}

	return decoded, true
}

func coerceString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

func coerceInt(raw json.RawMessage) int {
	if raw == nil {
		return 0
	}
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return int(number)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return parsed
		}
	}
	return 0
}

func coerceTimestamp(raw json.RawMessage) time.Time {
	value := coerceString(raw)
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(TimestampLayout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func coerceDate(raw json.RawMessage) string {
	value := coerceString(raw)
	if value == "" {
		return ""
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return ""
	}
	return value
}

func coerceStrings(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}
