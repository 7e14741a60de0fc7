package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() Ring {
	return Ring{
		{Lon: 10, Lat: 40},
		{Lon: 12, Lat: 40},
		{Lon: 12, Lat: 42},
		{Lon: 10, Lat: 42},
	}
}

func TestRenderRingSquare(t *testing.T) {
	r := RenderRing(square(), 2)

	require.Len(t, r.Outline, 4)
	require.Len(t, r.Fill, 2)

	assert.Equal(t, r.Outline[0], r.Fill[0][0])
	assert.Equal(t, r.Outline[1], r.Fill[0][1])
	assert.Equal(t, r.Outline[2], r.Fill[0][2])
	assert.Equal(t, r.Outline[0], r.Fill[1][0])
	assert.Equal(t, r.Outline[3], r.Fill[1][2])

	for _, p := range r.Outline {
		assert.InDelta(t, 2*SurfaceLift, p.Length(), 1e-9)
	}
}

func TestRenderRingClosedSquare(t *testing.T) {
	ring := append(square(), square()[0])
	r := RenderRing(ring, 1)

	require.Len(t, r.Outline, 5)
	assert.Len(t, r.Fill, 3)
}

func TestRenderRingDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		ring    Ring
		outline int
	}{
		{"empty", nil, 0},
		{"single point", Ring{{Lon: 1, Lat: 1}}, 1},
		{"segment", Ring{{Lon: 1, Lat: 1}, {Lon: 2, Lat: 2}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RenderRing(tt.ring, 2)
			assert.Len(t, r.Outline, tt.outline)
			assert.Empty(t, r.Fill)
		})
	}
}

func TestRenderPolygonDrawsHolesIndependently(t *testing.T) {
	hole := Ring{
		{Lon: 10.5, Lat: 40.5},
		{Lon: 11, Lat: 40.5},
		{Lon: 11, Lat: 41},
	}
	rings := RenderPolygon(Polygon{square(), hole, nil}, 2)

	require.Len(t, rings, 2)
	assert.Len(t, rings[0].Fill, 2)
	assert.Len(t, rings[1].Fill, 1)
}
