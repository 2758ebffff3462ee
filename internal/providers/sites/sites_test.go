package sites

import (
	"testing"

	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	deps := providers.Deps{Library: library.NewAccessor(store.NewMemory(), nil)}
	r := providers.NewRouter(Default(deps), nil)

	assert.Equal(t, []string{"novelbin", "novelfull", "ranobes", "wuxiaworld"}, IDs(r.Sites()))

	hosts := map[string]string{
		"www.novelbin.com":   "novelbin",
		"novelfull.net":      "novelfull",
		"NovelFull.com":      "novelfull",
		"ranobes.top":        "ranobes",
		"www.ranobes.net":    "ranobes",
		"www.wuxiaworld.com": "wuxiaworld",
	}
	for host, want := range hosts {
		s, ok := r.Lookup(host)
		if assert.True(t, ok, host) {
			assert.Equal(t, want, s.ID, host)
		}
	}

	_, ok := r.Lookup("royalroad.com")
	assert.False(t, ok)
}
