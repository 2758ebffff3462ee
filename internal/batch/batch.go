// Package batch replays a list of visited pages through the router.
package batch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/ui"
)

// Target is one visit: a URL and, optionally, a saved copy of the page.
// Without HTMLFile the page is fetched.
type Target struct {
	URL      string
	HTMLFile string
}

// ParseTargets reads one target per line, either "url" or
// "url<TAB>html-file". Blank lines and lines starting with # are skipped.
func ParseTargets(r io.Reader) ([]Target, error) {
	var out []Target

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		t, ok, err := ParseLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if ok {
			out = append(out, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// ParseLine parses a single target line; ok is false for lines to skip.
func ParseLine(line string) (Target, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Target{}, false, nil
	}

	rawURL, file, _ := strings.Cut(line, "\t")
	t := Target{URL: strings.TrimSpace(rawURL), HTMLFile: strings.TrimSpace(file)}
	if _, err := providers.ParseURL(t.URL); err != nil {
		return Target{}, false, err
	}

	return t, true, nil
}

// ByteFetcher returns a page body. generic.HTTPFetcher satisfies it.
type ByteFetcher interface {
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

type Runner struct {
	router  *providers.Router
	fetcher ByteFetcher
	log     *ui.Logger
	sem     *semaphore.Weighted
}

func NewRunner(router *providers.Router, f ByteFetcher, log *ui.Logger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = ui.Discard()
	}

	return &Runner{
		router:  router,
		fetcher: f,
		log:     log,
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

// Load builds the page for t, returning the number of bytes read.
func (r *Runner) Load(ctx context.Context, t Target) (providers.Page, int64, error) {
	var body []byte
	var err error

	if t.HTMLFile != "" {
		body, err = os.ReadFile(t.HTMLFile)
	} else if r.fetcher != nil {
		body, err = r.fetcher.FetchBytes(ctx, t.URL)
	} else {
		err = fmt.Errorf("no html for %s and fetching is disabled", t.URL)
	}
	if err != nil {
		return providers.Page{}, 0, err
	}

	page, err := providers.NewPage(t.URL, bytes.NewReader(body))
	if err != nil {
		return providers.Page{}, int64(len(body)), err
	}

	return page, int64(len(body)), nil
}

// Run visits every target with bounded concurrency. Failures are counted
// in stats and logged; Run only returns ctx's error.
func (r *Runner) Run(ctx context.Context, targets []Target, ph *ui.ProgressHandle, stats *ui.Stats) error {
	var wg sync.WaitGroup

	for _, t := range targets {
		host := t.URL
		if u, err := providers.ParseURL(t.URL); err == nil {
			host = u.Hostname()
		}
		if _, ok := r.router.Lookup(host); !ok {
			r.log.Debugf("skip %s: no site for host", t.URL)
			stats.Skipped.Add(1)
			advance(ph, 0, false)
			continue
		}

		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			if err := r.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer r.sem.Release(1)

			page, n, err := r.Load(ctx, t)
			stats.Bytes.Add(n)
			if err != nil {
				r.log.With("url", t.URL, "stage", "load").Errorf("%v", err)
				stats.Failed.Add(1)
				advance(ph, n, true)
				return
			}

			site, _ := r.router.Dispatch(ctx, page)
			r.log.Debugf("%s handled %s", site, t.URL)
			stats.Tracked.Add(1)
			advance(ph, n, false)
		}(t)
	}

	wg.Wait()
	if ph != nil {
		ph.MarkDone()
	}

	return ctx.Err()
}

func advance(ph *ui.ProgressHandle, n int64, failed bool) {
	if ph != nil {
		ph.Advance(n, failed)
	}
}
