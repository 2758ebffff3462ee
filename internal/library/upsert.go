package library

import (
	"strings"
	"time"
)

// Upsert folds a freshly scraped record into the stored entry for its id
// (existing may be nil). Present incoming fields win; absent ones keep
// the stored value. An incoming genres slice, even empty, replaces the
// stored list. Status is never changed by a scrape, link always follows
// the visited page and updated_at is always stamped.
func Upsert(existing *Entry, rec Record, now time.Time) Entry {
	var ex Entry
	if existing != nil {
		ex = *existing
	}

	status := string(Reading)
	if strings.TrimSpace(ex.Status) != "" {
		status = ex.Status
	}

	genres := rec.Genres
	if genres == nil {
		genres = ex.Genres
	}
	if genres == nil {
		genres = []string{}
	}

	link := rec.Link

	return Entry{
		ID:           rec.ID(),
		Source:       rec.Source,
		NovelKey:     rec.NovelKey,
		NovelName:    fill(rec.NovelName, ex.NovelName),
		NovelURL:     fill(rec.NovelURL, ex.NovelURL),
		CoverURL:     fill(rec.CoverURL, ex.CoverURL),
		Genres:       copyGenres(genres),
		ChapterLabel: fill(rec.ChapterLabel, ex.ChapterLabel),
		ChapterTitle: fill(rec.ChapterTitle, ex.ChapterTitle),
		Link:         &link,
		Status:       status,
		UpdatedAt:    FormatTime(now),
	}
}

func fill(incoming, stored *string) *string {
	if incoming != nil {
		return clone(incoming)
	}

	return clone(stored)
}

func copyGenres(g []string) []string {
	out := make([]string, len(g))
	copy(out, g)

	return out
}
