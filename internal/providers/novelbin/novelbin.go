// Package novelbin tracks chapters read on novelbin.com.
package novelbin

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

const ID = "novelbin"

var reCoverURL = regexp.MustCompile(`(?i)/novel/`)

func New(deps providers.Deps) providers.Site {
	return providers.Site{
		ID:          ID,
		MatchesHost: providers.HostIn("novelbin.com"),
		Handle: func(ctx context.Context, p providers.Page) error {
			return handle(ctx, deps, p)
		},
	}
}

// ParseURL accepts /b/<novel>/c/<chapter> and the older /b/<novel>/<chapter>.
func ParseURL(raw string) (providers.Location, bool) {
	u, err := providers.ParseURL(raw)
	if err != nil {
		return providers.Location{}, false
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) < 3 || parts[0] != "b" || parts[1] == "" {
		return providers.Location{}, false
	}

	rest := parts[2:]
	if rest[0] == "c" {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return providers.Location{}, false
	}

	slug := strings.Join(rest, "/")

	return providers.Location{
		NovelKey:     parts[1],
		ChapterSlug:  slug,
		ChapterLabel: chapters.LabelFromSlug(slug),
		URL:          u.String(),
	}, true
}

// Extract reads the novel and chapter fields a chapter page carries.
func Extract(p providers.Page) library.Record {
	var rec library.Record
	if p.Doc == nil {
		return rec
	}

	novel := p.Doc.Find("a.novel-title").First()
	rec.NovelName = library.Str(novel.Text())
	if href, ok := novel.Attr("href"); ok && p.URL != nil {
		if abs, ok := providers.Resolve(providers.Origin(p.URL), href); ok {
			rec.NovelURL = &abs
		}
	}

	ch := p.Doc.Find("a.chr-title").First()
	text := strings.TrimSpace(ch.Find(".chr-text").First().Text())
	if text == "" {
		text = strings.TrimSpace(ch.Text())
	}

	label, title := chapters.SplitHeading(text)
	rec.ChapterLabel = chapters.StripNoise(label)
	rec.ChapterTitle = chapters.StripNoise(title)

	return rec
}

// ExtractMeta reads the cover and genres from a novel landing page.
func ExtractMeta(p providers.Page) generic.Meta {
	cover := generic.FirstCover(p.Doc, p.URL, reCoverURL.MatchString,
		generic.ImgAttr("div.book img", generic.LazyImageAttrs...),
	)
	genres, _ := generic.LabeledSection(p.Doc, "ul.info.info-meta > li", "h3", "Genre:", "a")

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
