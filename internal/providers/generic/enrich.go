package generic

import (
	"context"
	"fmt"

	"github.com/brogergvhs/lntracker/internal/providers"
)

// Meta is what a landing page contributes to a record. A nil Genres
// means the genre section was not found.
type Meta struct {
	CoverURL *string
	Genres   []string
}

// Extractor reads Meta out of a fetched landing page.
type Extractor func(p providers.Page) Meta

// Enrich fetches novelURL and runs extract over it. Only fetch and parse
// failures are returned; missing structure just leaves fields empty.
func Enrich(ctx context.Context, f providers.Fetcher, novelURL string, extract Extractor) (Meta, error) {
	if f == nil {
		return Meta{}, fmt.Errorf("enrich %s: no fetcher", novelURL)
	}

	page, err := f.Fetch(ctx, novelURL)
	if err != nil {
		return Meta{}, err
	}

	return extract(page), nil
}

// EnrichIfNeeded consults the stored entry and fetches the landing page
// only when its cover or genres are missing. Fetch failures are logged
// and yield an empty Meta; store failures are returned.
func EnrichIfNeeded(ctx context.Context, deps providers.Deps, source, novelKey string, novelURL *string, extract Extractor) (Meta, error) {
	if novelURL == nil || *novelURL == "" {
		return Meta{}, nil
	}

	existing, err := deps.Library.Entry(ctx, source, novelKey)
	if err != nil {
		return Meta{}, fmt.Errorf("load entry: %w", err)
	}
	if !providers.NeedsEnrichment(existing) {
		return Meta{}, nil
	}

	meta, err := Enrich(ctx, deps.Fetcher, *novelURL, extract)
	if err != nil {
		if deps.Log != nil {
			deps.Log.With("site", source, "stage", "enrich").Warnf("novel page fetch failed: %v", err)
		}
		return Meta{}, nil
	}

	return meta, nil
}
