package library

import (
	"encoding/json"
	"strings"
	"time"
)

// StorageKey is the single store key the whole library lives under.
const StorageKey = "lnTracker.library"

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is what a site adapter produces for one visited chapter page.
// Nil pointers mean the field was not found on the page. Genres is nil
// when the landing page was not fetched this pass and non-nil (possibly
// empty) when it was.
type Record struct {
	Source       string
	NovelKey     string
	NovelName    *string
	NovelURL     *string
	CoverURL     *string
	Genres       []string
	ChapterLabel *string
	ChapterTitle *string
	Link         string
}

// ID returns the library key for the record.
func (r Record) ID() string {
	return EntryID(r.Source, r.NovelKey)
}

// Entry is one persisted novel in the library.
type Entry struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	NovelKey     string   `json:"novel_key"`
	NovelName    *string  `json:"novel_name"`
	NovelURL     *string  `json:"novel_url"`
	CoverURL     *string  `json:"cover_url"`
	Genres       []string `json:"genres"`
	ChapterLabel *string  `json:"chapter_label"`
	ChapterTitle *string  `json:"chapter_title"`
	Link         *string  `json:"link"`
	Status       string   `json:"status"`
	UpdatedAt    string   `json:"updated_at"`
}

// EntryID builds the primary key for a (source, novel key) pair.
func EntryID(source, novelKey string) string {
	return source + ":" + novelKey
}

// Title is the display title used for listing and sorting.
func (e Entry) Title() string {
	if e.NovelName != nil && *e.NovelName != "" {
		return *e.NovelName
	}
	if e.NovelKey != "" {
		return e.NovelKey
	}

	return "(unknown novel)"
}

// Updated parses UpdatedAt. ok is false when it is missing or unparseable.
func (e Entry) Updated() (time.Time, bool) {
	return ParseTime(e.UpdatedAt)
}

// UnmarshalJSON tolerates legacy shapes: a non-string status decodes as
// empty, a non-array genres value decodes as absent and non-string genre
// items are dropped.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var aux struct {
		plain
		Genres json.RawMessage `json:"genres"`
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*e = Entry(aux.plain)
	e.Genres = decodeGenres(aux.Genres)
	e.Status = ""

	var status string
	if json.Unmarshal(aux.Status, &status) == nil {
		e.Status = status
	}

	return nil
}

func decodeGenres(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		var s *string
		if json.Unmarshal(it, &s) == nil && s != nil {
			out = append(out, *s)
		}
	}

	return out
}

// FormatTime renders t the way updated_at is stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime reads a stored timestamp. ok is false for empty or
// unrecognized input.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s

	return &v
}

// Str returns a pointer to s, or nil when s is blank.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
