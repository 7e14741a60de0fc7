// Package drones serves the mocked fleet status, battery history and flight logs.
package drones

import (
	"fmt"
	"strings"
	"time"

	"github.com/woozymasta/agroglobe/internal/config"
)

// Drone is the status card of one drone.
type Drone struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       string       `json:"status"`
	Battery      int          `json:"battery"`
	BatteryLevel BatteryLevel `json:"batteryLevel"`
	Online       bool         `json:"online"`
}

// BatteryLevel is a coarse battery classification.
type BatteryLevel string

// Battery levels.
const (
	BatteryGood BatteryLevel = "good"
	BatteryFair BatteryLevel = "fair"
	BatteryLow  BatteryLevel = "low"
)

// LevelOf classifies a battery percentage.
func LevelOf(pct int) BatteryLevel {
	switch {
	case pct >= 80:
		return BatteryGood
	case pct >= 50:
		return BatteryFair
	}
	return BatteryLow
}

// Fleet holds the configured drones and their mocked history.
type Fleet struct {
	drones  []Drone
	flights map[string][]Flight
	history []Sample
}

// NewFleet builds the fleet from configuration. Flights are mocked: every
// drone flies over ten fields, five minutes each, starting at 20:12:32.
func NewFleet(cfg []config.Drone) *Fleet {
	f := &Fleet{
		drones:  make([]Drone, 0, len(cfg)),
		flights: make(map[string][]Flight, len(cfg)),
		history: BatteryHistory(),
	}

	base := time.Date(2025, 3, 30, 20, 12, 32, 0, time.UTC)
	for _, d := range cfg {
		status := "Offline"
		if d.Online {
			status = "Online"
		}

		f.drones = append(f.drones, Drone{
			ID:           d.ID,
			Name:         d.Name,
			Online:       d.Online,
			Status:       status,
			Battery:      d.Battery,
			BatteryLevel: LevelOf(d.Battery),
		})
		f.flights[d.ID] = mockFlights(base, 10)
	}

	return f
}

// List returns every drone in configuration order.
func (f *Fleet) List() []Drone {
	out := make([]Drone, len(f.drones))
	copy(out, f.drones)
	return out
}

// Get finds a drone by ID or, case-insensitively, by name.
func (f *Fleet) Get(id string) (Drone, bool) {
	for _, d := range f.drones {
		if d.ID == id || strings.EqualFold(d.Name, id) {
			return d, true
		}
	}
	return Drone{}, false
}

// BatteryHistory returns the battery samples within the time range ending at ref.
func (f *Fleet) BatteryHistory(rng string, ref time.Time) []Sample {
	return FilterRange(f.history, rng, ref)
}

// Logs renders the flight log of a drone.
func (f *Fleet) Logs(id string) (string, error) {
	d, ok := f.Get(id)
	if !ok {
		return "", fmt.Errorf("unknown drone %q", id)
	}
	return FlightLog(d.Name, f.flights[d.ID]), nil
}
