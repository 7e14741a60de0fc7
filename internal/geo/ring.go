package geo

// Triangle is one face of a ring's fill surface.
type Triangle [3]Point3D

// RenderedRing holds the geometry primitives for one polygon ring.
type RenderedRing struct {
	// Outline is drawn as a closed line loop.
	Outline []Point3D `json:"outline" yaml:"outline"`
	// Fill is a triangle fan anchored at the first outline point.
	Fill []Triangle `json:"fill" yaml:"fill"`
}

// RenderRing projects a ring slightly above a sphere of the given radius and
// builds its outline and fan-triangulated fill.
//
// The fan is only correct for convex or near-convex rings. Rings with fewer
// than three points produce no fill.
func RenderRing(ring Ring, radius float64) RenderedRing {
	lifted := radius * SurfaceLift

	out := RenderedRing{
		Outline: make([]Point3D, 0, len(ring)),
	}
	for _, c := range ring {
		out.Outline = append(out.Outline, Project(c.Lat, c.Lon, lifted))
	}

	n := len(out.Outline)
	if n < 3 {
		return out
	}

	p0 := out.Outline[0]
	out.Fill = make([]Triangle, 0, n-2)
	for i := 1; i <= n-2; i++ {
		out.Fill = append(out.Fill, Triangle{p0, out.Outline[i], out.Outline[i+1]})
	}

	return out
}

// RenderPolygon renders every ring of the polygon independently; holes get
// no special treatment.
func RenderPolygon(p Polygon, radius float64) []RenderedRing {
	rings := make([]RenderedRing, 0, len(p))
	for _, r := range p {
		if len(r) == 0 {
			continue
		}
		rings = append(rings, RenderRing(r, radius))
	}
	return rings
}
