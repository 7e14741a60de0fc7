package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestProjectKeepsRadius(t *testing.T) {
	for _, r := range []float64{0.5, 1, 2, 6371} {
		for lat := -90.0; lat <= 90; lat += 15 {
			for lon := -180.0; lon <= 180; lon += 30 {
				p := Project(lat, lon, r)
				assert.InDelta(t, r, p.Length(), r*eps, "lat=%v lon=%v r=%v", lat, lon, r)
			}
		}
	}
}

func TestProjectReferencePoints(t *testing.T) {
	origin := Project(0, 0, 1)
	assert.InDelta(t, 1, origin.X, eps)
	assert.InDelta(t, 0, origin.Y, eps)
	assert.InDelta(t, 0, origin.Z, eps)

	for _, lon := range []float64{-180, -45, 0, 90, 179.9} {
		pole := Project(90, lon, 3)
		assert.InDelta(t, 0, pole.X, eps)
		assert.InDelta(t, 3, pole.Y, eps)
		assert.InDelta(t, 0, pole.Z, eps)
	}

	south := Project(-90, 12, 2)
	assert.InDelta(t, -2, south.Y, eps)
}

func TestProjectOutOfRangeIsNotClamped(t *testing.T) {
	p := Project(120, 400, 1)
	assert.InDelta(t, 1, p.Length(), eps)
	assert.NotEqual(t, Project(90, 180, 1), p)
}

func TestProjectIsDeterministic(t *testing.T) {
	a := Project(42.123456, 11.987654, 2.01)
	b := Project(42.123456, 11.987654, 2.01)
	require.Equal(t, math.Float64bits(a.X), math.Float64bits(b.X))
	require.Equal(t, math.Float64bits(a.Y), math.Float64bits(b.Y))
	require.Equal(t, math.Float64bits(a.Z), math.Float64bits(b.Z))
}

func TestCameraPositionFacesProjectedPoint(t *testing.T) {
	cam := CameraPosition(42, 11, 6)
	assert.InDelta(t, 6, cam.Length(), eps)

	target := Project(42, 11, 1)
	cos := cam.Dot(target) / cam.Length()
	assert.InDelta(t, 1, cos, 1e-9)
}
