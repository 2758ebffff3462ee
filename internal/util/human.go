package util

import "fmt"

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// Human formats a byte count for progress lines and summaries, e.g.
// "512 B" or "1.50 KB". Negative counts read as zero.
func Human(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", max(n, 0))
	}

	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}
