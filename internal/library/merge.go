package library

import (
	"fmt"
	"strings"
)

// ImportMode selects how an imported library is combined with the stored one.
type ImportMode string

const (
	MergeMode   ImportMode = "merge"
	ReplaceMode ImportMode = "replace"
)

// ParseImportMode accepts "merge" (also the empty string) and "replace".
func ParseImportMode(s string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MergeMode):
		return MergeMode, nil
	case string(ReplaceMode):
		return ReplaceMode, nil
	default:
		return "", fmt.Errorf("unknown import mode %q (want merge or replace)", s)
	}
}

// Pick returns the entry whose updated_at is later; ties go to incoming.
// When either timestamp is missing or unparseable incoming wins, so that
// legacy data never silently drops an import.
func Pick(existing, incoming Entry) Entry {
	if incomingWins(existing, incoming) {
		return incoming
	}

	return existing
}

func incomingWins(existing, incoming Entry) bool {
	te, okE := existing.Updated()
	ti, okI := incoming.Updated()

	return !okE || !okI || !te.After(ti)
}

// Merge reconciles two libraries. Ids only in incoming are added, ids in
// both are composed field by field from existing, then incoming, then the
// winner (see Pick). Genres prefer the incoming list, then the existing
// one. Statuses of the result are normalized.
func Merge(existing, incoming Library) Library {
	out := existing.Clone()

	for id, inc := range incoming {
		inc.ID = id
		ex, ok := out[id]
		if !ok {
			out[id] = inc
			continue
		}

		var merged Entry
		if incomingWins(ex, inc) {
			merged = overlay(ex, inc)
		} else {
			merged = overlay(inc, ex)
		}
		merged.ID = id
		switch {
		case inc.Genres != nil:
			merged.Genres = inc.Genres
		case ex.Genres != nil:
			merged.Genres = ex.Genres
		default:
			merged.Genres = []string{}
		}
		out[id] = merged
	}

	out.NormalizeStatuses()

	return out
}

// Replace returns incoming as the new library, with statuses normalized.
func Replace(incoming Library) Library {
	out := make(Library, len(incoming))
	for id, e := range incoming {
		e.ID = id
		out[id] = e
	}
	out.NormalizeStatuses()

	return out
}

// overlay layers top over base: every field set in top wins, unset
// fields keep base's value. A stored JSON null counts as unset.
func overlay(base, top Entry) Entry {
	out := base
	if top.Source != "" {
		out.Source = top.Source
	}
	if top.NovelKey != "" {
		out.NovelKey = top.NovelKey
	}
	if top.NovelName != nil {
		out.NovelName = top.NovelName
	}
	if top.NovelURL != nil {
		out.NovelURL = top.NovelURL
	}
	if top.CoverURL != nil {
		out.CoverURL = top.CoverURL
	}
	if top.ChapterLabel != nil {
		out.ChapterLabel = top.ChapterLabel
	}
	if top.ChapterTitle != nil {
		out.ChapterTitle = top.ChapterTitle
	}
	if top.Link != nil {
		out.Link = top.Link
	}
	if top.Status != "" {
		out.Status = top.Status
	}
	if top.UpdatedAt != "" {
		out.UpdatedAt = top.UpdatedAt
	}

	return out
}
