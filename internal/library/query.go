package library

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder names a listing order.
type SortOrder string

const (
	UpdatedDesc SortOrder = "updated_desc"
	UpdatedAsc  SortOrder = "updated_asc"
	TitleAsc    SortOrder = "title_asc"
	TitleDesc   SortOrder = "title_desc"
)

// AllStatuses is the status filter value that matches every entry.
const AllStatuses = "all"

// Query filters and orders a listing. Empty fields mean no filter and
// the default order.
type Query struct {
	Text   string
	Status string
	Sort   SortOrder
}

// ParseSort validates a sort name; empty selects UpdatedDesc.
func ParseSort(s string) (SortOrder, error) {
	switch o := SortOrder(strings.TrimSpace(s)); o {
	case "":
		return UpdatedDesc, nil
	case UpdatedDesc, UpdatedAsc, TitleAsc, TitleDesc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

// Select returns the entries matching q in q.Sort order.
func (l Library) Select(q Query) []Entry {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	status := strings.TrimSpace(q.Status)
	if status == AllStatuses {
		status = ""
	}

	out := make([]Entry, 0, len(l))
	for _, e := range l {
		if status != "" && NormalizeStatus(e.Status) != NormalizeStatus(status) {
			continue
		}
		if text != "" && !strings.Contains(haystack(e), text) {
			continue
		}
		out = append(out, e)
	}

	order := q.Sort
	if order == "" {
		order = UpdatedDesc
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch order {
		case UpdatedAsc:
			return lessThenID(a.UpdatedAt, b.UpdatedAt, a, b)
		case TitleAsc:
			return lessThenID(strings.ToLower(a.Title()), strings.ToLower(b.Title()), a, b)
		case TitleDesc:
			return lessThenID(strings.ToLower(b.Title()), strings.ToLower(a.Title()), a, b)
		default:
			return lessThenID(b.UpdatedAt, a.UpdatedAt, a, b)
		}
	})

	return out
}

func lessThenID(x, y string, a, b Entry) bool {
	if x != y {
		return x < y
	}

	return a.ID < b.ID
}

func haystack(e Entry) string {
	parts := []string{e.NovelKey, e.Source}
	for _, p := range []*string{e.NovelName, e.ChapterLabel, e.ChapterTitle} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	parts = append(parts, e.Genres...)

	return strings.ToLower(strings.Join(parts, " "))
}

// Counts returns the number of entries per canonical status, plus the
// total under AllStatuses.
func (l Library) Counts() map[string]int {
	counts := map[string]int{AllStatuses: 0}
	for _, s := range Statuses {
		counts[string(s)] = 0
	}

	for _, e := range l {
		counts[AllStatuses]++
		counts[string(NormalizeStatus(e.Status))]++
	}

	return counts
}
