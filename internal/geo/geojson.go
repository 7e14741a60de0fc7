// Package geo handles geographic data structures and their projection onto the globe.
package geo

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Coordinate is a GeoJSON position in degrees.
type Coordinate struct {
	Lon float64 `json:"lon" yaml:"lon"`
	Lat float64 `json:"lat" yaml:"lat"`
}

// Ring is one closed boundary of a polygon. Closure is conventional, not enforced.
type Ring []Coordinate

// Polygon is a list of rings: the outer boundary first, holes after it.
type Polygon []Ring

// ParseGeoJSON decodes a Feature, FeatureCollection or bare geometry and
// returns every Polygon it contains. MultiPolygons are flattened, other
// geometry types are skipped.
func ParseGeoJSON(data []byte) ([]Polygon, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var geometries []orb.Geometry

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}

	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature: %w", err)
		}
		geometries = append(geometries, f.Geometry)

	case "":
		return nil, fmt.Errorf("decode geojson: missing type")

	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geometry: %w", err)
		}
		geometries = append(geometries, g.Geometry())
	}

	polygons := make([]Polygon, 0, len(geometries))
	for _, g := range geometries {
		polygons = append(polygons, FromOrb(g)...)
	}

	return polygons, nil
}

// FromOrb converts orb polygons into Polygons. Non-areal geometries yield nothing.
func FromOrb(g orb.Geometry) []Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return []Polygon{fromOrbPolygon(v)}
	case orb.MultiPolygon:
		out := make([]Polygon, 0, len(v))
		for _, p := range v {
			out = append(out, fromOrbPolygon(p))
		}
		return out
	case orb.Collection:
		var out []Polygon
		for _, item := range v {
			out = append(out, FromOrb(item)...)
		}
		return out
	}

	return nil
}

func fromOrbPolygon(p orb.Polygon) Polygon {
	poly := make(Polygon, 0, len(p))
	for _, r := range p {
		ring := make(Ring, 0, len(r))
		for _, pt := range r {
			ring = append(ring, Coordinate{Lon: pt.Lon(), Lat: pt.Lat()})
		}
		poly = append(poly, ring)
	}
	return poly
}

// Orb converts the polygon back to its orb representation.
func (p Polygon) Orb() orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, r := range p {
		ring := make(orb.Ring, 0, len(r))
		for _, c := range r {
			ring = append(ring, orb.Point{c.Lon, c.Lat})
		}
		out = append(out, ring)
	}
	return out
}

// toMultiPolygon drops empty rings and polygons left without rings.
func toMultiPolygon(polygons []Polygon) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(polygons))
	for _, p := range polygons {
		poly := p.Orb()
		poly = slices.DeleteFunc(poly, func(r orb.Ring) bool { return len(r) == 0 })
		if len(poly) == 0 {
			continue
		}
		mp = append(mp, poly)
	}
	return mp
}

// HasPoints reports whether any ring of the polygons holds a coordinate.
func HasPoints(polygons []Polygon) bool {
	for _, p := range polygons {
		for _, r := range p {
			if len(r) > 0 {
				return true
			}
		}
	}
	return false
}

// Centroid returns the planar centroid of the polygons. The second value is
// false when there is nothing to average.
func Centroid(polygons []Polygon) (Coordinate, bool) {
	mp := toMultiPolygon(polygons)
	if len(mp) == 0 {
		return Coordinate{}, false
	}

	c, area := planar.CentroidArea(mp)
	if area == 0 {
		// degenerate rings: fall back to the bounding box
		c = mp.Bound().Center()
	}

	return Coordinate{Lon: c.Lon(), Lat: c.Lat()}, true
}

// AreaHectares returns the geodesic area of the polygons in hectares.
func AreaHectares(polygons []Polygon) float64 {
	mp := toMultiPolygon(polygons)
	if len(mp) == 0 {
		return 0
	}

	return orbgeo.Area(mp) / 10000
}
