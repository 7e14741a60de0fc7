// Package scene assembles the globe overlay geometry for every stored field.
package scene

import (
	"github.com/woozymasta/agroglobe/internal/config"
	"github.com/woozymasta/agroglobe/internal/fields"
	"github.com/woozymasta/agroglobe/internal/geo"
)

// NoFieldsMessage is shown when there is nothing to draw.
const NoFieldsMessage = "No fields found, please register your fields to see them on the globe."

// Shape is the rendered geometry of one field.
type Shape struct {
	Properties map[string]any     `json:"properties" yaml:"properties"`
	Name       string             `json:"name" yaml:"name"`
	Rings      []geo.RenderedRing `json:"rings" yaml:"rings"`
}

// Camera describes where the viewer sits.
type Camera struct {
	Focus    geo.Coordinate `json:"focus" yaml:"focus"`
	Position geo.Point3D    `json:"position" yaml:"position"`
}

// Scene is everything a client needs to draw the globe.
type Scene struct {
	Message    string       `json:"message,omitempty" yaml:"message,omitempty"`
	Shapes     []Shape      `json:"shapes" yaml:"shapes"`
	Style      config.Style `json:"style" yaml:"style"`
	Camera     Camera       `json:"camera" yaml:"camera"`
	Radius     float64      `json:"radius" yaml:"radius"`
	AutoRotate bool         `json:"autoRotate" yaml:"auto_rotate"`
}

// Build projects the geometries onto the globe described by cfg.
//
// The camera looks at cfg.Focus when set, otherwise at the centroid of the
// first geometry, otherwise at the default focus.
func Build(geometries []fields.Geometry, cfg config.Globe) Scene {
	s := Scene{
		Shapes: make([]Shape, 0, len(geometries)),
		Style:  cfg.Style,
		Radius: cfg.Radius,
	}

	for _, g := range geometries {
		shape := Shape{
			Name:       g.Name,
			Properties: map[string]any{"name": g.Name, "crop": g.Crop},
		}
		for _, p := range g.Polygons {
			shape.Rings = append(shape.Rings, geo.RenderPolygon(p, cfg.Radius)...)
		}
		if len(shape.Rings) == 0 {
			continue
		}
		s.Shapes = append(s.Shapes, shape)
	}

	focus := config.DefaultFocus
	switch {
	case cfg.Focus != nil:
		focus = *cfg.Focus
	case len(geometries) > 0:
		if c, ok := geo.Centroid(geometries[0].Polygons); ok {
			focus = c
		}
	}

	s.Camera = Camera{
		Focus:    focus,
		Position: geo.CameraPosition(focus.Lat, focus.Lon, cfg.CameraDistance),
	}

	if len(s.Shapes) == 0 {
		s.AutoRotate = true
		s.Message = NoFieldsMessage
	}

	return s
}

// TriangleCount totals the fill triangles of the scene.
func (s Scene) TriangleCount() int {
	n := 0
	for _, sh := range s.Shapes {
		for _, r := range sh.Rings {
			n += len(r.Fill)
		}
	}
	return n
}
