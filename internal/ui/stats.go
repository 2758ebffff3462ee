package ui

import (
	"fmt"
	"sync/atomic"
)

// Stats counts the outcome of a batch of visits.
type Stats struct {
	Tracked atomic.Int64
	Skipped atomic.Int64
	Failed  atomic.Int64
	Bytes   atomic.Int64
}

func (s *Stats) String() string {
	return fmt.Sprintf("%d tracked, %d skipped, %d failed",
		s.Tracked.Load(), s.Skipped.Load(), s.Failed.Load())
}
