package generic

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LabeledSection finds the first element matching rows whose labelSel
// text equals label (case-insensitive, trimmed) and collects the text of
// the links under it selected by linkSel. found is false when no such
// section exists; a section without links yields an empty, non-nil list.
func LabeledSection(doc *goquery.Document, rows, labelSel, label, linkSel string) (genres []string, found bool) {
	if doc == nil {
		return nil, false
	}

	want := strings.ToLower(strings.TrimSpace(label))

	var section *goquery.Selection
	doc.Find(rows).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		l := row.Find(labelSel).First()
		if l.Length() == 0 || strings.ToLower(strings.TrimSpace(l.Text())) != want {
			return true
		}
		section = row
		return false
	})
	if section == nil {
		return nil, false
	}

	return LinkTexts(section.Find(linkSel), false), true
}

// LinkTexts returns the trimmed, non-empty texts of sel in document
// order, optionally dropping repeats.
func LinkTexts(sel *goquery.Selection, dedupe bool) []string {
	out := []string{}
	seen := map[string]bool{}

	sel.Each(func(_ int, a *goquery.Selection) {
		t := strings.TrimSpace(a.Text())
		if t == "" {
			return
		}
		if dedupe {
			if seen[t] {
				return
			}
			seen[t] = true
		}
		out = append(out, t)
	})

	return out
}
