// Package sites lists the adapters the tracker ships with.
package sites

import (
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/providers/novelbin"
	"github.com/brogergvhs/lntracker/internal/providers/novelfull"
	"github.com/brogergvhs/lntracker/internal/providers/ranobes"
	"github.com/brogergvhs/lntracker/internal/providers/wuxiaworld"
)

// Default returns every adapter in dispatch order.
func Default(deps providers.Deps) []providers.Site {
	return []providers.Site{
		novelbin.New(deps),
		novelfull.New(deps),
		ranobes.New(deps),
		wuxiaworld.New(deps),
	}
}

// IDs returns the ids of sites in order.
func IDs(sites []providers.Site) []string {
	out := make([]string, len(sites))
	for i, s := range sites {
		out[i] = s.ID
	}

	return out
}
