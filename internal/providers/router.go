package providers

import (
	"context"
	"sync"

	"github.com/brogergvhs/lntracker/internal/ui"
)

// Router hands each visited page to the first site that claims its
// host. Sites are tried in the order given.
type Router struct {
	sites []Site
	log   *ui.Logger
}

func NewRouter(sites []Site, log *ui.Logger) *Router {
	if log == nil {
		log = ui.Discard()
	}

	return &Router{sites: sites, log: log}
}

func (r *Router) Sites() []Site {
	return r.sites
}

// Lookup finds the site for a raw hostname.
func (r *Router) Lookup(hostname string) (Site, bool) {
	host := NormalizeHost(hostname)
	for _, s := range r.sites {
		if s.MatchesHost(host) {
			return s, true
		}
	}

	return Site{}, false
}

// Dispatch runs the matching site's handler. Handler errors are logged,
// never returned; handled reports whether a site claimed the page.
func (r *Router) Dispatch(ctx context.Context, p Page) (string, bool) {
	if p.URL == nil {
		return "", false
	}

	site, ok := r.Lookup(p.URL.Hostname())
	if !ok {
		r.log.Debugf("no site for %s", p.URL.Host)
		return "", false
	}

	if err := site.Handle(ctx, p); err != nil {
		r.log.With("site", site.ID, "stage", "handle").Errorf("%s: %v", p.URL, err)
	}

	return site.ID, true
}

// Listen dispatches every page received from events, skipping a page
// whose URL equals the previous one. Runs are not serialized. Listen
// returns once events is closed or ctx ends and all runs have finished.
func (r *Router) Listen(ctx context.Context, events <-chan Page) {
	var wg sync.WaitGroup
	defer wg.Wait()

	var seen Repeats
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-events:
			if !ok {
				return
			}
			if p.URL == nil {
				continue
			}

			if seen.Repeat(p.URL.String()) {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Dispatch(ctx, p)
			}()
		}
	}
}

// Repeats remembers the last URL it was shown. The zero value is ready.
type Repeats struct {
	mu   sync.Mutex
	last string
}

// Repeat records href and reports whether it equals the previous one.
func (r *Repeats) Repeat(href string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if href == r.last {
		return true
	}
	r.last = href

	return false
}

// Forget clears href if it is the last URL recorded, so the next
// identical signal is handled again.
func (r *Repeats) Forget(href string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == href {
		r.last = ""
	}
}
