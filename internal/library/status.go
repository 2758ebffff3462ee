package library

import "strings"

// Status is one of the canonical reading states shown in the library.
type Status string

const (
	Reading  Status = "reading"
	OnHold   Status = "on-hold"
	Dropped  Status = "dropped"
	Finished Status = "finished"
)

// Statuses lists the canonical states in display order.
var Statuses = []Status{Reading, OnHold, Dropped, Finished}

var statusSynonyms = map[string]Status{
	"current":   Reading,
	"reading":   Reading,
	"completed": Finished,
	"complete":  Finished,
	"finished":  Finished,
	"onhold":    OnHold,
	"hold":      OnHold,
	"on-hold":   OnHold,
	"dropped":   Dropped,
}

// NormalizeStatus maps any stored or legacy value onto the canonical set.
// Unknown values become Reading.
func NormalizeStatus(raw string) Status {
	if s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}

	return Reading
}

// IsCanonical reports whether raw is already one of the canonical values.
func IsCanonical(raw string) bool {
	for _, s := range Statuses {
		if string(s) == raw {
			return true
		}
	}

	return false
}

// IsKnownStatus reports whether raw is a canonical value or a recognized
// synonym, in any case.
func IsKnownStatus(raw string) bool {
	_, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]

	return ok
}
