// Package wuxiaworld tracks chapters read on wuxiaworld.com.
package wuxiaworld

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/lntracker/internal/chapters"
	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/providers/generic"
)

const ID = "wuxiaworld"

// The reader is a client-rendered app without stable ids; these utility
// class sets identify the chapter heading and the novel name.
var (
	headingClasses = []string{"font-set-b18", "flex", "items-start", "!font-sans", "sm:font-set-b26"}
	novelClasses   = []string{"MuiTypography-root", "MuiTypography-body1", "text-[13px]", "text-gray-t0", "sm:text-[15px]", "ww-1ne0po4"}
)

const (
	coverSelector = `img[src*="cdn.wuxiaworld.com/images/covers/"]`
	genreSelector = `a[href*="/novels/?genre="]`
)

func New(deps providers.Deps) providers.Site {
	return providers.Site{
		ID:          ID,
		MatchesHost: providers.HostIn("wuxiaworld.com"),
		Handle: func(ctx context.Context, p providers.Page) error {
			return handle(ctx, deps, p)
		},
	}
}

// ParseURL accepts /novel/<novel>/<chapter>.
func ParseURL(raw string) (providers.Location, bool) {
	u, err := providers.ParseURL(raw)
	if err != nil {
		return providers.Location{}, false
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) < 3 || !strings.EqualFold(parts[0], "novel") {
		return providers.Location{}, false
	}

	slug := parts[2]
	label, ok := chapters.NumberFromSlug(slug)
	if !ok {
		label = slug
	}

	return providers.Location{
		NovelKey:     parts[1],
		ChapterSlug:  slug,
		ChapterLabel: label,
		URL:          u.String(),
	}, true
}

// Extract reads the heading, the novel name and the cover image, all of
// which the chapter page itself carries.
func Extract(p providers.Page) library.Record {
	var rec library.Record
	if p.Doc == nil {
		return rec
	}

	rec.NovelName = library.Str(firstWithClasses(p.Doc, "p", novelClasses).Text())

	label, title := chapters.SplitHeading(firstWithClasses(p.Doc, "h4", headingClasses).Text())
	rec.ChapterLabel = chapters.StripNoise(label)
	rec.ChapterTitle = chapters.StripNoise(title)

	name := ""
	if rec.NovelName != nil {
		name = *rec.NovelName
	}
	rec.CoverURL = generic.FirstCover(p.Doc, p.URL, nil,
		generic.ImgWithAlt(coverSelector, name),
		generic.ImgAttr(coverSelector),
	)

	return rec
}

// ExtractGenres collects the genre links of a novel page, without repeats.
// A page without any genre link yields nil.
func ExtractGenres(p providers.Page) generic.Meta {
	if p.Doc == nil {
		return generic.Meta{}
	}

	genres := generic.LinkTexts(p.Doc.Find(genreSelector), true)
	if len(genres) == 0 {
		return generic.Meta{}
	}

	return generic.Meta{Genres: genres}
}

// NovelURL is the landing page of a novel slug.
func NovelURL(p providers.Page, novelKey string) string {
	u := providers.Origin(p.URL)
	u.Path = "/novel/" + novelKey

	return u.String()
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
	novelURL := NovelURL(p, loc.NovelKey)
	rec.NovelURL = &novelURL

	existing, err := deps.Library.Entry(ctx, ID, loc.NovelKey)
	if err != nil {
		return fmt.Errorf("enrich: load entry: %w", err)
	}
	if existing == nil || len(existing.Genres) == 0 {
		meta, err := generic.Enrich(ctx, deps.Fetcher, novelURL, ExtractGenres)
		if err != nil {
			if deps.Log != nil {
				deps.Log.With("site", ID, "stage", "enrich").Warnf("novel page fetch failed: %v", err)
			}
		} else {
			rec.Genres = meta.Genres
		}
	}

	rec.Source = ID
	rec.NovelKey = loc.NovelKey
	if rec.ChapterLabel == nil {
		rec.ChapterLabel = library.Str(loc.ChapterLabel)
	}
	rec.Link = loc.URL

	if _, err := deps.Library.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	return nil
}

func firstWithClasses(doc *goquery.Document, tag string, classes []string) *goquery.Selection {
	return doc.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, c := range classes {
			if !s.HasClass(c) {
				return false
			}
		}
		return true
	}).First()
}
