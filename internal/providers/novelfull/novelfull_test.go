package novelfull

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chapterHTML = `<html><body>
	<a class="truyen-title" href="/my-novel.html">My Novel</a>
	<a class="chapter-title" href="/my-novel/chapter-12-the-duel.html" title="Chapter 12: The Duel">
		<span class="chapter-text">Chapter 12<span>: The Duel</span></span>
	</a>
</body></html>`

const landingHTML = `<html><body>
	<div class="book"><img src="/uploads/thumbs/my-novel.jpg" alt="My Novel"></div>
	<div class="info">
		<div><h3>Author:</h3><a href="/author/x">X</a></div>
		<div><h3>Genre:</h3><a href="/genre/Fantasy">Fantasy</a>, <a href="/genre/Romance">Romance</a></div>
	</div>
</body></html>`

type pages struct {
	html  map[string]string
	calls int
}

func (f *pages) Fetch(_ context.Context, rawURL string) (providers.Page, error) {
	f.calls++
	h, ok := f.html[rawURL]
	if !ok {
		return providers.Page{}, fmt.Errorf("fetch %s: HTTP 404", rawURL)
	}

	return providers.NewPage(rawURL, strings.NewReader(h))
}

func page(t *testing.T, rawURL, html string) providers.Page {
	t.Helper()

	p, err := providers.NewPage(rawURL, strings.NewReader(html))
	require.NoError(t, err)

	return p
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw        string
		ok         bool
		key, label string
	}{
		{"https://novelfull.net/my-novel/chapter-12-the-duel.html", true, "my-novel", "12"},
		{"https://novelfull.com/my-novel/chapter-53-part-2.html", true, "my-novel", "53 part 2"},
		{"https://novelfull.net/my-novel/Chapter-7.HTML", true, "my-novel", "7"},
		{"https://novelfull.net/my-novel/chapter-side-story.html", true, "my-novel", "side-story"},
		{"https://novelfull.net/my-novel/chapter-prologue.html", true, "my-novel", "prologue"},
		{"https://novelfull.net/my-novel.html", false, "", ""},
		{"https://novelfull.net/my-novel/chapter-12", false, "", ""},
		{"https://novelfull.net/my-novel/prologue.html", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc, ok := ParseURL(tt.raw)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, loc.NovelKey)
			assert.Equal(t, tt.label, loc.ChapterLabel)
		})
	}
}

func TestExtract(t *testing.T) {
	rec := Extract(page(t, "https://novelfull.net/my-novel/chapter-12-the-duel.html", chapterHTML))

	assert.Equal(t, "My Novel", *rec.NovelName)
	assert.Equal(t, "https://novelfull.net/my-novel.html", *rec.NovelURL)
	assert.Equal(t, "12", *rec.ChapterLabel)
	assert.Equal(t, "The Duel", *rec.ChapterTitle)
}

func TestChapterTextFallbacks(t *testing.T) {
	tests := []struct {
		name, html, want string
	}{
		{"leading text node", `<a class="chapter-title"><span class="chapter-text">Chapter 5<span>: extra</span></span></a>`, "Chapter 5"},
		{"whole inner text", `<a class="chapter-title"><span class="chapter-text"><b>Chapter 6</b></span></a>`, "Chapter 6"},
		{"anchor text", `<a class="chapter-title">Chapter 8: Home</a>`, "Chapter 8: Home"},
		{"missing", `<p>nothing</p>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chapterText(page(t, "https://novelfull.net/x/chapter-1.html", tt.html)))
		})
	}
}

func TestExtractMeta(t *testing.T) {
	name := "My Novel"
	meta := ExtractMeta(&name)(page(t, "https://novelfull.net/my-novel.html", landingHTML))

	require.NotNil(t, meta.CoverURL)
	assert.Equal(t, "https://novelfull.net/uploads/thumbs/my-novel.jpg", *meta.CoverURL)
	assert.Equal(t, []string{"Fantasy", "Romance"}, meta.Genres)

	t.Run("cover tiers without a name", func(t *testing.T) {
		meta := ExtractMeta(nil)(page(t, "https://novelfull.net/x.html", `<img src="/uploads/x.jpg">`))
		assert.Equal(t, "https://novelfull.net/uploads/x.jpg", *meta.CoverURL)
		assert.Nil(t, meta.Genres)

		meta = ExtractMeta(nil)(page(t, "https://novelfull.net/x.html", `<img src="https://cdn.test/thumb/y.jpg">`))
		assert.Equal(t, "https://cdn.test/thumb/y.jpg", *meta.CoverURL)
	})
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	lib := library.NewAccessor(store.NewMemory(), nil)
	f := &pages{html: map[string]string{"https://novelfull.net/my-novel.html": landingHTML}}
	site := New(providers.Deps{Library: lib, Fetcher: f})

	assert.True(t, site.MatchesHost("novelfull.com"))
	require.NoError(t, site.Handle(ctx, page(t, "https://novelfull.net/my-novel/chapter-12-the-duel.html", chapterHTML)))

	e, err := lib.Entry(ctx, ID, "my-novel")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "https://novelfull.net/uploads/thumbs/my-novel.jpg", *e.CoverURL)
	assert.Equal(t, []string{"Fantasy", "Romance"}, e.Genres)
	assert.Equal(t, "12", *e.ChapterLabel)
	assert.Equal(t, "The Duel", *e.ChapterTitle)
	assert.Equal(t, 1, f.calls)
}

func TestHandleLabelFromURL(t *testing.T) {
	ctx := context.Background()
	lib := library.NewAccessor(store.NewMemory(), nil)
	site := New(providers.Deps{Library: lib, Fetcher: &pages{}})

	require.NoError(t, site.Handle(ctx, page(t, "https://novelfull.net/my-novel/chapter-53-part-2.html", `<a class="truyen-title">My Novel</a>`)))

	e, err := lib.Entry(ctx, ID, "my-novel")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "53 part 2", *e.ChapterLabel)
	assert.Nil(t, e.NovelURL)
}
