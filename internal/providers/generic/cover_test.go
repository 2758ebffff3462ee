package generic

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	return d
}

func TestFirstCover(t *testing.T) {
	base, _ := url.Parse("https://site.test/novel/x/chapter-1")

	html := `<html><body>
		<div class="book"><img data-src="/covers/lazy.jpg" src="/placeholder.gif"></div>
		<img alt="Other" src="/other.jpg">
		<img alt="My Novel" src="">
		<img alt="My Novel" src="/named.jpg">
		<div class="thumb" style="background-image: url('/bg.jpg')"></div>
		<a class="cover" href="https://cdn.test/full.jpg">cover</a>
	</body></html>`
	d := doc(t, html)

	tests := []struct {
		name       string
		accept     func(string) bool
		strategies []CoverStrategy
		want       *string
	}{
		{
			name:       "lazy attribute wins over src",
			strategies: []CoverStrategy{ImgAttr("div.book img", LazyImageAttrs...)},
			want:       strPtr("https://site.test/covers/lazy.jpg"),
		},
		{
			name:       "plain src by default",
			strategies: []CoverStrategy{ImgAttr("div.book img")},
			want:       strPtr("https://site.test/placeholder.gif"),
		},
		{
			name:       "alt match skips empty src",
			strategies: []CoverStrategy{ImgWithAlt("img[alt]", "My Novel")},
			want:       strPtr("https://site.test/named.jpg"),
		},
		{
			name:       "falls through missing tiers",
			strategies: []CoverStrategy{ImgAttr(".absent img"), ImgWithAlt("img", ""), BackgroundImage(".thumb")},
			want:       strPtr("https://site.test/bg.jpg"),
		},
		{
			name:       "href",
			strategies: []CoverStrategy{Href("a.cover")},
			want:       strPtr("https://cdn.test/full.jpg"),
		},
		{
			name:       "rejected result ends the search",
			accept:     func(u string) bool { return strings.Contains(u, "/covers/") },
			strategies: []CoverStrategy{ImgAttr("div.book img"), Href("a.cover")},
			want:       nil,
		},
		{
			name:       "accepted",
			accept:     func(u string) bool { return strings.Contains(u, "/covers/") },
			strategies: []CoverStrategy{ImgAttr("div.book img", LazyImageAttrs...)},
			want:       strPtr("https://site.test/covers/lazy.jpg"),
		},
		{
			name:       "nothing found",
			strategies: []CoverStrategy{ImgAttr(".none"), BackgroundImage(".none")},
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstCover(d, base, tt.accept, tt.strategies...))
		})
	}

	assert.Nil(t, FirstCover(nil, base, nil, ImgAttr("img")))
}

func TestBackgroundImageQuoting(t *testing.T) {
	for _, style := range []string{
		`background-image:url(/a.jpg)`,
		`background-image: url("/a.jpg")`,
		`color: red; BACKGROUND-IMAGE : url( '/a.jpg' )`,
	} {
		d := doc(t, `<div class="c" style="`+strings.ReplaceAll(style, `"`, `&quot;`)+`"></div>`)
		raw, ok := BackgroundImage(".c")(d)
		assert.True(t, ok, style)
		assert.Equal(t, "/a.jpg", raw, style)
	}
}

func strPtr(s string) *string { return &s }
