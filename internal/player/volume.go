package player

import "math"

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a base-2 logarithmic scale: 0 leaves the signal unchanged,
// -1 halves it, -2 quarters it.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
