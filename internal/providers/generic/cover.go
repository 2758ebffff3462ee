package generic

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/lntracker/internal/providers"
)

// LazyImageAttrs is the attribute order for lazily loaded images.
var LazyImageAttrs = []string{"data-src", "data-original", "data-lazy-src", "src"}

var reBackgroundURL = regexp.MustCompile(`(?i)background-image\s*:\s*url\(\s*["']?([^"')]+?)["']?\s*\)`)

// CoverStrategy returns a raw, possibly relative, cover reference.
type CoverStrategy func(doc *goquery.Document) (string, bool)

// ImgAttr reads the first listed attribute that is set on the first
// element matching sel.
func ImgAttr(sel string, attrs ...string) CoverStrategy {
	if len(attrs) == 0 {
		attrs = []string{"src"}
	}

	return func(doc *goquery.Document) (string, bool) {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			return "", false
		}

		return firstAttr(el, attrs)
	}
}

// ImgWithAlt picks the first image matching sel whose alt text equals
// alt exactly.
func ImgWithAlt(sel, alt string) CoverStrategy {
	return func(doc *goquery.Document) (string, bool) {
		if alt == "" {
			return "", false
		}

		var src string
		doc.Find(sel).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			if strings.TrimSpace(img.AttrOr("alt", "")) != alt {
				return true
			}
			src = strings.TrimSpace(img.AttrOr("src", ""))
			return src == ""
		})

		return src, src != ""
	}
}

// BackgroundImage reads url(...) from the inline style of sel.
func BackgroundImage(sel string) CoverStrategy {
	return func(doc *goquery.Document) (string, bool) {
		style, ok := doc.Find(sel).First().Attr("style")
		if !ok {
			return "", false
		}

		m := reBackgroundURL.FindStringSubmatch(style)
		if m == nil {
			return "", false
		}
		raw := strings.TrimSpace(m[1])

		return raw, raw != ""
	}
}

// Href reads the href of the first element matching sel.
func Href(sel string) CoverStrategy {
	return ImgAttr(sel, "href")
}

// FirstCover tries each strategy in order and returns the first result
// that resolves against base and passes accept (when accept is set).
// A strategy whose result is rejected ends the search, matching a site
// whose only cover slot holds a placeholder.
func FirstCover(doc *goquery.Document, base *url.URL, accept func(string) bool, strategies ...CoverStrategy) *string {
	if doc == nil {
		return nil
	}

	for _, s := range strategies {
		raw, ok := s(doc)
		if !ok {
			continue
		}

		abs, ok := providers.Resolve(base, raw)
		if !ok {
			continue
		}
		if accept != nil && !accept(abs) {
			return nil
		}

		return &abs
	}

	return nil
}

func firstAttr(el *goquery.Selection, attrs []string) (string, bool) {
	for _, a := range attrs {
		if v, ok := el.Attr(a); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}

	return "", false
}
