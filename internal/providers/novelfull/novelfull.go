// Package novelfull tracks chapters read on novelfull.net and novelfull.com.
package novelfull

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

const ID = "novelfull"

var reChapterFile = regexp.MustCompile(`(?i)^chapter-.*\.html$`)

func New(deps providers.Deps) providers.Site {
	return providers.Site{
		ID:          ID,
		MatchesHost: providers.HostIn("novelfull.net", "novelfull.com"),
		Handle: func(ctx context.Context, p providers.Page) error {
			return handle(ctx, deps, p)
		},
	}
}

// ParseURL accepts /<novel>/chapter-<...>.html.
func ParseURL(raw string) (providers.Location, bool) {
	u, err := providers.ParseURL(raw)
	if err != nil {
		return providers.Location{}, false
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) < 2 || !reChapterFile.MatchString(parts[1]) {
		return providers.Location{}, false
	}

	slug := chapters.TrimExt(parts[1])
	label := chapters.LabelFromSlug(slug)
	if label == slug {
		label = slug[len("chapter-"):]
	}

	return providers.Location{
		NovelKey:     parts[0],
		ChapterSlug:  slug,
		ChapterLabel: label,
		URL:          u.String(),
	}, true
}

func Extract(p providers.Page) library.Record {
	var rec library.Record
	if p.Doc == nil {
		return rec
	}

	novel := p.Doc.Find("a.truyen-title").First()
	rec.NovelName = library.Str(novel.Text())
	if href, ok := novel.Attr("href"); ok && p.URL != nil {
		if abs, ok := providers.Resolve(providers.Origin(p.URL), href); ok {
			rec.NovelURL = &abs
		}
	}

	label, title := chapters.SplitHeading(chapterText(p))
	rec.ChapterLabel = chapters.StripNoise(label)
	rec.ChapterTitle = chapters.StripNoise(title)

	return rec
}

// chapterText prefers the anchor's title attribute, then the leading text
// of .chapter-text, then the whole .chapter-text, then the anchor.
func chapterText(p providers.Page) string {
	a := p.Doc.Find("a.chapter-title").First()
	if a.Length() == 0 {
		return ""
	}

	inner := a.Find(".chapter-text").First()
	candidates := []func() string{
		func() string { return a.AttrOr("title", "") },
		func() string { return inner.Contents().First().Text() },
		func() string { return inner.Text() },
		func() string { return a.Text() },
	}
	for _, c := range candidates {
		if t := strings.TrimSpace(c()); t != "" {
			return t
		}
	}

	return ""
}

// ExtractMeta returns the landing-page extractor for a novel whose
// display name is known, since the cover is the image carrying that name.
func ExtractMeta(novelName *string) generic.Extractor {
	name := ""
	if novelName != nil {
		name = *novelName
	}

	return func(p providers.Page) generic.Meta {
		cover := generic.FirstCover(p.Doc, p.URL, nil,
			generic.ImgWithAlt("img[alt][src]", name),
			generic.ImgAttr(`img[src^="/uploads/"][alt], img[src^="/uploads/"]`),
			generic.ImgAttr(`img[src*="/uploads/"]`),
			generic.ImgAttr(`img[src*="thumb"]`),
		)
		genres, _ := generic.LabeledSection(p.Doc, ".info > div", "h3", "Genre:", "a")

		return generic.Meta{CoverURL: cover, Genres: genres}
	}
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

	meta, err := generic.EnrichIfNeeded(ctx, deps, ID, loc.NovelKey, rec.NovelURL, ExtractMeta(rec.NovelName))
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
