package generic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/util"
)

// HTTPFetcher loads pages with a shared client and retries server errors.
type HTTPFetcher struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
}

func NewFetcher(c *http.Client, attempts int) *HTTPFetcher {
	if c == nil {
		c = http.DefaultClient
	}
	if attempts < 1 {
		attempts = 1
	}

	return &HTTPFetcher{client: c, attempts: attempts, backoff: 500 * time.Millisecond}
}

// SetBackoff changes the base delay between attempts.
func (f *HTTPFetcher) SetBackoff(d time.Duration) {
	f.backoff = d
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (providers.Page, error) {
	body, err := f.get(ctx, rawURL)
	if err != nil {
		return providers.Page{}, err
	}
	defer func() {
		_ = body.Close()
	}()

	return providers.NewPage(rawURL, body)
}

// FetchBytes returns the raw body, for callers that need its size.
func (f *HTTPFetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	return io.ReadAll(body)
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := util.DoWithRetry(f.client, req, f.attempts, f.backoff)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	return resp.Body, nil
}
