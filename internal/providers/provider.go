package providers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/ui"
)

// Location is what a site recognizes in a chapter URL.
type Location struct {
	NovelKey     string
	ChapterSlug  string
	ChapterLabel string
	URL          string
}

// Page is one visited document together with the URL it was loaded from.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

func NewPage(rawURL string, body io.Reader) (Page, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return Page{}, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return Page{}, fmt.Errorf("parse %s: %w", u, err)
	}

	return Page{URL: u, Doc: doc}, nil
}

// ParseURL accepts only absolute http(s) URLs.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("parse url: %q is not an absolute http url", rawURL)
	}

	return u, nil
}

// Site is one registered adapter.
type Site struct {
	ID          string
	MatchesHost func(host string) bool
	Handle      func(ctx context.Context, p Page) error
}

// HostIn returns a MatchesHost predicate for an exact host list.
func HostIn(hosts ...string) func(string) bool {
	return func(host string) bool {
		for _, h := range hosts {
			if host == h {
				return true
			}
		}

		return false
	}
}

// NormalizeHost lowercases and strips one leading "www.".
func NormalizeHost(host string) string {
	host = strings.ToLower(host)

	return strings.TrimPrefix(host, "www.")
}

// Library is the part of the library accessor a site needs.
type Library interface {
	Entry(ctx context.Context, source, novelKey string) (*library.Entry, error)
	Upsert(ctx context.Context, rec library.Record) (library.Entry, error)
}

// Fetcher loads secondary pages such as a novel's landing page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Deps are handed to every site constructor.
type Deps struct {
	Library Library
	Fetcher Fetcher
	Log     *ui.Logger
}

// NeedsEnrichment reports whether the stored entry is missing a cover or
// genres, which is the only case a landing page is fetched.
func NeedsEnrichment(e *library.Entry) bool {
	if e == nil {
		return true
	}

	return e.CoverURL == nil || *e.CoverURL == "" || len(e.Genres) == 0
}

// Resolve makes ref absolute against base.
func Resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	r, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base == nil {
		if !r.IsAbs() {
			return "", false
		}
		return r.String(), true
	}

	return base.ResolveReference(r).String(), true
}

// Origin returns scheme://host of u.
func Origin(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, Host: u.Host}
}
