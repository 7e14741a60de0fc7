package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelative(t *testing.T) {
	now := time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{500 * time.Millisecond, "just now"},
		{42 * time.Second, "42 seconds ago"},
		{5*time.Minute + 10*time.Second, "5 minute(s) ago"},
		{3 * time.Hour, "3 hour(s) ago"},
		{2*day + time.Hour, "2 day(s) ago"},
		{65 * day, "2 month(s) ago"},
		{400 * day, "Feb 24, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Relative(now, now.Add(-tt.ago)))
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   time.Duration
		want string
	}{
		{2*day + 5*time.Hour, "2 days, 5 hours"},
		{3*time.Hour + 15*time.Minute, "3 hours, 15 minutes"},
		{45 * time.Minute, "45 minutes"},
		{30 * time.Second, "30 seconds"},
		{-1500 * time.Millisecond, "-2 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(now, now.Add(tt.in)))
		})
	}
}
