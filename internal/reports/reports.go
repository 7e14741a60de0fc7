// Package reports builds the dashboard's report data and field exports.
package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/woozymasta/agroglobe/internal/analysis"
	"github.com/woozymasta/agroglobe/internal/fields"

	"gopkg.in/yaml.v3"
)

// Metric is one axis of the field health radar.
type Metric struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// HealthRadar returns the mocked organisation-wide health metrics.
func HealthRadar() []Metric {
	return []Metric{
		{Name: "Detected pests", Value: 186},
		{Name: "Probability of infection", Value: 305},
		{Name: "Infected crops", Value: 237},
		{Name: "Field health", Value: 273},
	}
}

// Point is one day of the field history chart.
type Point struct {
	Date     time.Time `json:"date"`
	Health   int       `json:"health"`
	Infected int       `json:"infected"`
}

// RangeDays maps a history range selector to days; unknown values mean 90.
func RangeDays(rng string) int {
	switch rng {
	case "7d":
		return 7
	case "30d":
		return 30
	}
	return 90
}

// History returns the mocked field history for the range ending at ref.
// Values are a fixed pseudo-random walk so charts stay stable between calls.
func History(rng string, ref time.Time) []Point {
	const total = 90

	days := RangeDays(rng)
	start := ref.AddDate(0, 0, -(total - 1))

	out := make([]Point, 0, days+1)
	health, infected := 300, 180
	for i := 0; i < total; i++ {
		health = 60 + (health*31+i*17)%440
		infected = 100 + (infected*13+i*29)%430

		date := start.AddDate(0, 0, i)
		if date.Before(ref.AddDate(0, 0, -days)) {
			continue
		}
		out = append(out, Point{Date: date, Health: health, Infected: infected})
	}
	return out
}

// Row is the flattened export form of a field.
type Row struct {
	Name            string    `json:"name" yaml:"name"`
	Crop            string    `json:"crop" yaml:"crop"`
	AreaHa          float64   `json:"areaHa" yaml:"area_ha"`
	Status          string    `json:"status" yaml:"status"`
	InfectionChance *float64  `json:"infectionChance,omitempty" yaml:"infection_chance,omitempty"`
	Risk            string    `json:"risk,omitempty" yaml:"risk,omitempty"`
	LastUpdated     time.Time `json:"lastUpdated" yaml:"last_updated"`
}

// Formats lists the supported export formats.
var Formats = []string{"json", "yaml", "csv"}

// Rows flattens fields for export.
func Rows(list []fields.Field) []Row {
	rows := make([]Row, 0, len(list))
	for _, f := range list {
		r := Row{
			Name:        f.Name,
			Crop:        f.Crop,
			AreaHa:      f.AreaHa,
			Status:      "Not analyzed",
			LastUpdated: f.LastUpdated,
		}
		if f.Data != nil {
			chance := f.Data.InfectionChance
			r.InfectionChance = &chance
			r.Risk = string(analysis.RiskLevel(chance))
			r.Status = "Healthy"
			if f.Data.Infected {
				r.Status = "Infected"
			}
		}
		rows = append(rows, r)
	}
	return rows
}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	switch format {
	case "yaml":
		return "application/yaml"
	case "csv":
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Export writes the fields in the requested format.
func Export(w io.Writer, format string, list []fields.Field) error {
	rows := Rows(list)

	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()

	case "csv":
		return writeCSV(w, rows)
	}

	return fmt.Errorf("unsupported export format %q", format)
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "crop", "area_ha", "status", "infection_chance", "risk", "last_updated"}); err != nil {
		return err
	}

	for _, r := range rows {
		chance := ""
		if r.InfectionChance != nil {
			chance = strconv.FormatFloat(*r.InfectionChance, 'f', 2, 64)
		}
		record := []string{
			r.Name,
			r.Crop,
			strconv.FormatFloat(r.AreaHa, 'f', 2, 64),
			r.Status,
			chance,
			r.Risk,
			r.LastUpdated.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
