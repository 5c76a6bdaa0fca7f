package roster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMember indicates that a submitted name is not on the roster.
	ErrUnknownMember = errors.New("roster: unknown member")
	// ErrInvalidDuration indicates that a duration is not one of the offered options.
	ErrInvalidDuration = errors.New("roster: duration not offered")
	// ErrUnknownItem indicates that a practiced item is not in the repertoire catalog.
	ErrUnknownItem = errors.New("roster: item not in repertoire")
)

// Group is one named section of the roster. A flat roster uses a single
// group with an empty name.
type Group struct {
	Name    string
	Members []string
}

// Roster is the fixed set of valid member names, partitioned into ordered groups.
type Roster struct {
	Groups []Group
}

// DefaultDurationOptions are the session lengths offered on the form, in minutes.
var DefaultDurationOptions = []int{10, 15, 20, 25, 30, 40, 45, 60, 75, 90}

// DefaultRepertoire lists everything the form offers under "what did you practice",
// warm-ups first, then the songbook.
var DefaultRepertoire = []string{
	"Oppvarming",
	"Stemmeøvelser",
	"Slått til riddere",
	"Ridder kai",
	"Akevitten",
	"MAR-Schlägers vol. 2",
	"Nå, e nu alla",
	"Norge",
	"Så rå",
	"Gryning vid havet",
	"Ode til 2. bass",
	"Kjærlighet for en natt",
	"Bergmannen",
	"Now and forever",
	"Der skåles",
	"Slem",
	"Olav Trygvason",
	"Hjertet slår",
}

// DefaultRoster returns the choir's voice sections in concert order.
func DefaultRoster() Roster {
	return Roster{Groups: []Group{
		{Name: "1. tenor", Members: []string{
			"Martin", "Herman", "Trygve", "Kristoffer", "Håkon Gåskjenn",
		}},
		{Name: "2. tenor", Members: []string{
			"Eirik", "Rasmus", "Julian", "Steffen", "Leon", "Emil", "Mikael", "Kristian",
		}},
		{Name: "1. bass", Members: []string{
			"Mats", "Birk", "Borgar", "Theo", "Jakob", "Harald", "Erling",
		}},
		{Name: "2. bass", Members: []string{
			"Maxi", "Erlend", "Andreas", "Håkon Aase", "Marcus", "Jens",
		}},
	}}
}

// FlatRoster builds a group-less roster from a plain member list.
func FlatRoster(members []string) Roster {
	copied := make([]string, len(members))
	copy(copied, members)
	return Roster{Groups: []Group{{Members: copied}}}
}

// Grouped reports whether the roster carries named sections.
func (r Roster) Grouped() bool {
	for _, group := range r.Groups {
		if group.Name != "" {
			return true
		}
	}
	return false
}

// Members returns every member in roster order.
func (r Roster) Members() []string {
	var all []string
	for _, group := range r.Groups {
		all = append(all, group.Members...)
	}
	return all
}

// GroupOf resolves the section a member sings in. The empty string is
// returned for members of a flat roster.
func (r Roster) GroupOf(member string) (string, error) {
	trimmed := strings.TrimSpace(member)
	for _, group := range r.Groups {
		for _, name := range group.Members {
			if name == trimmed {
				return group.Name, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMember, member)
}

// ValidateDuration checks a submitted session length against the option set.
func ValidateDuration(minutes int, options []int) error {
	for _, option := range options {
		if minutes == option {
			return nil
		}
	}
	return fmt.Errorf("%w: %d minutes", ErrInvalidDuration, minutes)
}

// ValidatePracticed checks that every submitted item is in the catalog.
// Order and duplicates are left to the caller; only membership is enforced.
func ValidatePracticed(items []string, catalog []string) error {
	known := make(map[string]struct{}, len(catalog))
	for _, item := range catalog {
		known[item] = struct{}{}
	}
	for _, item := range items {
		if _, ok := known[item]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownItem, item)
		}
	}
	return nil
}
