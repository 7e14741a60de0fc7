package drones

import (
	"fmt"
	"strings"
	"time"
)

// Flight is one mocked survey flight over a field.
type Flight struct {
	Start  time.Time
	Finish time.Time
	Field  string
}

func mockFlights(start time.Time, n int) []Flight {
	out := make([]Flight, 0, n)
	t := start
	for i := 1; i <= n; i++ {
		finish := t.Add(5 * time.Minute)
		if i == 1 {
			// the first flight ends early, later ones run back to back
			finish = t.Add(2*time.Minute + 40*time.Second)
		}
		out = append(out, Flight{Start: t, Finish: finish, Field: fmt.Sprintf("Field %d", i)})
		t = finish
	}
	return out
}

// FlightLog renders a start and a completion line for every flight, e.g.
//
//	[20:12.32] [DRONE 1] [STATUS UPDATE]: Flight started for Field 1
func FlightLog(drone string, flights []Flight) string {
	tag := strings.ToUpper(drone)

	var b strings.Builder
	for i, f := range flights {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeLine(&b, f.Start, tag, "Flight started for "+f.Field)
		b.WriteByte('\n')
		writeLine(&b, f.Finish, tag, "Flight completed for "+f.Field)
	}
	return b.String()
}

func writeLine(b *strings.Builder, t time.Time, tag, msg string) {
	fmt.Fprintf(b, "[%02d:%02d.%02d] [%s] [STATUS UPDATE]: %s", t.Hour(), t.Minute(), t.Second(), tag, msg)
}
