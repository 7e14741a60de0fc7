// Package fields stores the user's fields and their mocked health state.
package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/woozymasta/agroglobe/internal/geo"
)

var (
	// ErrNotFound is returned for operations on an unknown field name.
	ErrNotFound = errors.New("field not found")
	// ErrDuplicate is returned when a field name is already taken.
	ErrDuplicate = errors.New("field already exists")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid field")
)

// Frequencies lists the accepted automatic analysis schedules.
var Frequencies = []string{
	"Every 6 hours",
	"Every 12 hours",
	"Once a day",
	"3 times a week",
	"Once a week",
	"Once every 2 weeks",
}

// Field is a named crop area with its location as GeoJSON.
type Field struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Crop        string          `json:"crop" yaml:"crop"`
	GeoJSON     json.RawMessage `json:"geoJson" yaml:"-"`
	AreaHa      float64         `json:"areaHa" yaml:"area_ha"`
	Automatic   bool            `json:"automatic,omitempty" yaml:"automatic,omitempty"`
	Frequency   string          `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	CreatedAt   time.Time       `json:"createdAt" yaml:"created_at"`
	LastUpdated time.Time       `json:"lastUpdated" yaml:"last_updated"`
	Loading     bool            `json:"loading" yaml:"loading"`
	Data        *Health         `json:"data,omitempty" yaml:"data,omitempty"`
}

// Health is the result of the last (mocked) analysis run.
type Health struct {
	Infected        bool    `json:"infected" yaml:"infected"`
	InfectionChance float64 `json:"infectionChance" yaml:"infection_chance"`
}

// NewField is the user input for creating a field.
type NewField struct {
	Name      string          `json:"name"`
	Crop      string          `json:"crop"`
	GeoJSON   json.RawMessage `json:"geoJson"`
	Automatic bool            `json:"automatic"`
	Frequency string          `json:"frequency"`
}

// Patch holds optional changes to an existing field.
type Patch struct {
	Name      *string         `json:"name,omitempty"`
	Crop      *string         `json:"crop,omitempty"`
	GeoJSON   json.RawMessage `json:"geoJson,omitempty"`
	Automatic *bool           `json:"automatic,omitempty"`
	Frequency *string         `json:"frequency,omitempty"`
	Loading   *bool           `json:"loading,omitempty"`
	Data      *Health         `json:"data,omitempty"`
}

// Geometry is a field's parsed location.
type Geometry struct {
	Name     string
	Crop     string
	Polygons []geo.Polygon
}

// Polygons parses the stored GeoJSON.
func (f Field) Polygons() ([]geo.Polygon, error) {
	return geo.ParseGeoJSON(f.GeoJSON)
}

func (f Field) clone() Field {
	if f.Data != nil {
		d := *f.Data
		f.Data = &d
	}
	f.GeoJSON = slices.Clone(f.GeoJSON)
	return f
}

// validate trims the input and checks it against the field form rules.
// It returns the parsed polygons so callers do not parse twice.
func (nf *NewField) validate() ([]geo.Polygon, error) {
	nf.Name = strings.TrimSpace(nf.Name)
	nf.Crop = strings.TrimSpace(nf.Crop)

	if nf.Name == "" {
		return nil, fmt.Errorf("%w: please enter your field's name", ErrInvalid)
	}
	if nf.Crop == "" {
		return nil, fmt.Errorf("%w: please enter the crop type", ErrInvalid)
	}
	if len(nf.GeoJSON) == 0 {
		return nil, fmt.Errorf("%w: please enter the field's location", ErrInvalid)
	}
	if nf.Automatic && !slices.Contains(Frequencies, nf.Frequency) {
		return nil, fmt.Errorf("%w: unknown analysis frequency %q", ErrInvalid, nf.Frequency)
	}

	polygons, err := parseLocation(nf.GeoJSON)
	if err != nil {
		return nil, err
	}

	return polygons, nil
}

// parseLocation accepts GeoJSON either inline or as a JSON string holding it,
// which is how a form textarea submits it.
func parseLocation(raw json.RawMessage) ([]geo.Polygon, error) {
	data := []byte(raw)

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		data = []byte(text)
	}

	polygons, err := geo.ParseGeoJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("%w: location contains no polygon", ErrInvalid)
	}
	if !geo.HasPoints(polygons) {
		return nil, fmt.Errorf("%w: location polygon has no coordinates", ErrInvalid)
	}

	return polygons, nil
}

// normalizeLocation unwraps string-encoded GeoJSON so the store always keeps JSON objects.
func normalizeLocation(raw json.RawMessage) json.RawMessage {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return json.RawMessage(text)
	}
	return slices.Clone(raw)
}
