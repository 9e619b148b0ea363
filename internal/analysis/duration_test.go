package analysis

import (
	"math"
	"testing"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 seconds"},
		{1, "1 second"},
		{59.9, "59 seconds"},
		{60, "1 minute"},
		{65, "1 minute, 5 seconds"},
		{3600, "1 hour"},
		{7322, "2 hours, 2 minutes, 2 seconds"},
		{86400, "1 day"},
		{90061, "1 day, 1 hour, 1 minute, 1 second"},
		{2*86400 + 5, "2 days, 5 seconds"},
		{math.NaN(), "N/A"},
		{math.Inf(1), "N/A"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
