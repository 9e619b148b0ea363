package analysis

import (
	"fmt"
	"math"
	"strings"
)

// MissingDuration is printed for a missing or non-finite duration.
const MissingDuration = "N/A"

// FormatSeconds renders a duration in seconds as days, hours, minutes and
// seconds, e.g. 65 -> "1 minute, 5 seconds". Zero units are omitted;
// seconds are always shown when nothing else is. Fractions are truncated.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return MissingDuration
	}
	s := int64(seconds)
	if s < 0 {
		s = 0
	}
	days := s / 86400
	s %= 86400
	hours := s / 3600
	s %= 3600
	minutes := s / 60
	s %= 60

	var parts []string
	if days > 0 {
		parts = append(parts, unit(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, unit(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, unit(minutes, "minute"))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, unit(s, "second"))
	}
	return strings.Join(parts, ", ")
}

func unit(n int64, name string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}
