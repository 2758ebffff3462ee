// Package ranobes tracks chapters read on ranobes.top and ranobes.net.
package ranobes

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/brogergvhs/lntracker/internal/chapters"
	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/providers/generic"
)

const ID = "ranobes"

var (
	reSeriesID  = regexp.MustCompile(`-(\d+)$`)
	reChapterID = regexp.MustCompile(`^(\d+)\.html$`)
)

func New(deps providers.Deps) providers.Site {
	return providers.Site{
		ID:          ID,
		MatchesHost: providers.HostIn("ranobes.top", "ranobes.net"),
		Handle: func(ctx context.Context, p providers.Page) error {
			return handle(ctx, deps, p)
		},
	}
}

// ParseURL accepts /<series>-<id>/<chapter-id>.html. The novel key is the
// numeric series id, which survives title changes in the series slug.
func ParseURL(raw string) (providers.Location, bool) {
	u, err := providers.ParseURL(raw)
	if err != nil {
		return providers.Location{}, false
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) < 2 {
		return providers.Location{}, false
	}

	series := reSeriesID.FindStringSubmatch(parts[0])
	chapter := reChapterID.FindStringSubmatch(parts[1])
	if series == nil || chapter == nil {
		return providers.Location{}, false
	}

	return providers.Location{
		NovelKey:     series[1],
		ChapterSlug:  chapter[1],
		ChapterLabel: chapter[1],
		URL:          u.String(),
	}, true
}

// Extract reads "<chapter heading> | <novel name>" from the document
// title and the novel link from the breadcrumb bar.
func Extract(p providers.Page) library.Record {
	var rec library.Record
	if p.Doc == nil {
		return rec
	}

	left, right, _ := strings.Cut(strings.TrimSpace(p.Doc.Find("title").First().Text()), "|")
	if i := strings.Index(right, "|"); i >= 0 {
		right = right[:i]
	}
	rec.NovelName = library.Str(right)

	label, title := chapters.SplitHeading(left)
	rec.ChapterLabel = chapters.StripNoise(label)
	rec.ChapterTitle = chapters.StripNoise(title)

	links := p.Doc.Find("#dle-speedbar a[href]")
	if links.Length() >= 2 && p.URL != nil {
		if abs, ok := providers.Resolve(providers.Origin(p.URL), links.Eq(1).AttrOr("href", "")); ok {
			rec.NovelURL = &abs
		}
	}

	return rec
}

func ExtractMeta(p providers.Page) generic.Meta {
	cover := generic.FirstCover(p.Doc, p.URL, nil,
		generic.BackgroundImage(".poster figure.cover"),
		generic.Href(".poster a.highslide[href]"),
		generic.ImgAttr(".poster img[src]"),
	)
	genres, _ := generic.LabeledSection(p.Doc,
		".r-fullstory-s2 .mcollapse-block", ".mcollapse-title h4.title", "Genres",
		".mcollapse-cont .links a")

	return generic.Meta{CoverURL: cover, Genres: genres}
}

func handle(ctx context.Context, deps providers.Deps, p providers.Page) error {
	if p.URL == nil {
		return nil
	}
	loc, ok := ParseURL(p.URL.String())
	if !ok {
		return nil
	}

	rec := Extract(p)

	meta, err := generic.EnrichIfNeeded(ctx, deps, ID, loc.NovelKey, rec.NovelURL, ExtractMeta)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	rec.Source = ID
	rec.NovelKey = loc.NovelKey
	rec.CoverURL = meta.CoverURL
	rec.Genres = meta.Genres
	if rec.ChapterLabel == nil {
		rec.ChapterLabel = library.Str(loc.ChapterLabel)
	}
	rec.Link = loc.URL

	if _, err := deps.Library.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	return nil
}
