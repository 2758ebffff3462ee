package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, false)

	log.Debugf("hidden %d", 1)
	log.With("site", "novelbin").Warnf("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "site=novelbin")

	buf.Reset()
	debug := NewLoggerTo(&buf, true)
	debug.Debugf("visible")
	assert.True(t, debug.With("k", "v").Debug)
	assert.Contains(t, buf.String(), "visible")
}

func TestStats(t *testing.T) {
	var s Stats
	s.Tracked.Add(3)
	s.Failed.Add(1)

	assert.Equal(t, "3 tracked, 0 skipped, 1 failed", s.String())
}
