package geo

import "math"

// SurfaceLift scales the globe radius for overlays so they sit just above
// the sphere and do not z-fight with its surface.
const SurfaceLift = 1.005

// Point3D is a Cartesian point in globe space.
type Point3D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Length returns the distance from the origin.
func (p Point3D) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Dot returns the scalar product of p and q.
func (p Point3D) Dot(q Point3D) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Project maps latitude and longitude (degrees) onto a sphere of the given radius.
//
// Latitude is measured from the north pole and longitude is offset by 180
// degrees, so (0, 0) lands on +X and the north pole on +Y. Inputs outside the
// nominal ranges are not clamped or wrapped.
func Project(lat, lon, radius float64) Point3D {
	phi := (90 - lat) * (math.Pi / 180)
	theta := (lon + 180) * (math.Pi / 180)

	return Point3D{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

// CameraPosition places a camera at the given distance looking at (lat, lon).
// Longitude is mirrored (180 - lon) and the X axis is not negated, which
// together put the camera on the same side of the globe as Project(lat, lon).
func CameraPosition(lat, lon, distance float64) Point3D {
	lon = 180 - lon

	phi := (90 - lat) * (math.Pi / 180)
	theta := (lon + 180) * (math.Pi / 180)

	return Point3D{
		X: distance * math.Sin(phi) * math.Cos(theta),
		Y: distance * math.Cos(phi),
		Z: distance * math.Sin(phi) * math.Sin(theta),
	}
}
