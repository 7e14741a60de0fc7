package drones

import (
	"time"
)

// ReferenceDate anchors every mocked time series.
var ReferenceDate = time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)

// Sample is one day of battery readings, keyed by drone ID.
type Sample struct {
	Date   time.Time      `json:"date"`
	Values map[string]int `json:"values"`
}

// RangeDays maps a range selector to a number of days. Unknown selectors
// fall back to a week.
func RangeDays(rng string) int {
	switch rng {
	case "1d":
		return 1
	case "3d":
		return 3
	case "7d":
		return 7
	}
	return 7
}

// FilterRange keeps the samples dated on or after ref minus the range.
func FilterRange(samples []Sample, rng string, ref time.Time) []Sample {
	start := ref.AddDate(0, 0, -RangeDays(rng))

	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Date.Before(start) {
			out = append(out, s)
		}
	}
	return out
}

// BatteryHistory returns the mocked daily battery readings of both default drones.
func BatteryHistory() []Sample {
	readings := [][2]int{
		{150, 222}, {180, 97}, {120, 167}, {260, 242}, {290, 373}, {340, 301},
		{180, 245}, {320, 409}, {110, 59}, {190, 261}, {350, 327}, {210, 292},
		{380, 342}, {220, 137}, {170, 120}, {190, 138}, {360, 446}, {410, 364},
		{180, 243}, {150, 89}, {200, 137}, {170, 224}, {230, 138}, {290, 387},
		{250, 215}, {130, 75}, {420, 383}, {180, 122}, {240, 315}, {380, 454},
	}

	start := ReferenceDate.AddDate(0, 0, -(len(readings) - 1))
	out := make([]Sample, 0, len(readings))
	for i, r := range readings {
		out = append(out, Sample{
			Date:   start.AddDate(0, 0, i),
			Values: map[string]int{"droneOne": r[0], "droneTwo": r[1]},
		})
	}
	return out
}
