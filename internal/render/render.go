// Package render rasterizes a globe scene into a preview image.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/agroglobe/internal/geo"
	"github.com/woozymasta/agroglobe/internal/scene"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// supersample is the oversampling factor used before downscaling.
const supersample = 2

// Options controls the preview output.
type Options struct {
	Background color.NRGBA
	Globe      color.NRGBA
	Size       int
}

// DefaultOptions returns a dark background with an ocean colored globe.
func DefaultOptions(size int) Options {
	if size <= 0 {
		size = 512
	}
	return Options{
		Size:       size,
		Background: color.NRGBA{R: 8, G: 10, B: 22, A: 255},
		Globe:      color.NRGBA{R: 20, G: 60, B: 110, A: 255},
	}
}

// view is an orthographic camera looking at the globe center.
type view struct {
	back, right, up geo.Point3D
	cx, cy, scale   float64
}

func newView(cam geo.Point3D, radius float64, px int) view {
	back := normalize(cam)
	if back == (geo.Point3D{}) {
		back = geo.Point3D{Z: 1}
	}

	worldUp := geo.Point3D{Y: 1}
	right := cross(worldUp, back)
	if right.Length() < 1e-9 {
		// looking straight down a pole
		right = cross(geo.Point3D{Z: -1}, back)
	}
	right = normalize(right)

	half := float64(px) / 2
	return view{
		back:  back,
		right: right,
		up:    cross(back, right),
		cx:    half,
		cy:    half,
		scale: half * 0.9 / (radius * geo.SurfaceLift),
	}
}

// project returns screen coordinates and whether p faces the camera.
func (v view) project(p geo.Point3D) (float32, float32, bool) {
	x := v.cx + p.Dot(v.right)*v.scale
	y := v.cy - p.Dot(v.up)*v.scale
	return float32(x), float32(y), p.Dot(v.back) > 0
}

// Snapshot draws the globe, the field fills and their outlines as seen from
// the scene camera. Geometry on the far side of the globe is culled.
func Snapshot(s scene.Scene, opts Options) *image.RGBA {
	if opts.Size <= 0 {
		opts = DefaultOptions(0)
	}

	px := opts.Size * supersample
	hi := image.NewRGBA(image.Rect(0, 0, px, px))
	draw.Draw(hi, hi.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	v := newView(s.Camera.Position, s.Radius, px)
	z := vector.NewRasterizer(px, px)

	// globe disc
	disc := s.Radius * v.scale
	const segments = 128
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := float32(v.cx + disc*math.Cos(a))
		y := float32(v.cy + disc*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(hi, hi.Bounds(), shade{cx: v.cx, cy: v.cy, r: disc, c: opts.Globe}, image.Point{})

	fill := image.NewUniform(s.Style.FillColor.NRGBA())
	line := image.NewUniform(s.Style.LineColor.WithOpacity(s.Style.Opacity).NRGBA())
	width := s.Style.LineWidth * supersample

	for _, sh := range s.Shapes {
		for _, r := range sh.Rings {
			for _, t := range r.Fill {
				drawTriangle(z, hi, fill, v, t)
			}
			drawOutline(z, hi, line, v, r.Outline, width)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	xdraw.CatmullRom.Scale(out, out.Bounds(), hi, hi.Bounds(), draw.Src, nil)

	return out
}

// limbDarkening is how much of the globe color is lost at the disc edge.
const limbDarkening = 0.5

// shade is the globe color darkened quadratically towards the limb.
type shade struct {
	cx, cy, r float64
	c         color.NRGBA
}

func (s shade) ColorModel() color.Model { return color.NRGBAModel }

func (s shade) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (s shade) At(x, y int) color.Color {
	dx := (float64(x) + 0.5 - s.cx) / s.r
	dy := (float64(y) + 0.5 - s.cy) / s.r
	k := 1 - limbDarkening*min(dx*dx+dy*dy, 1)

	return color.NRGBA{
		R: uint8(float64(s.c.R) * k),
		G: uint8(float64(s.c.G) * k),
		B: uint8(float64(s.c.B) * k),
		A: s.c.A,
	}
}

func drawTriangle(z *vector.Rasterizer, dst draw.Image, src image.Image, v view, t geo.Triangle) {
	var xs, ys [3]float32
	for i, p := range t {
		x, y, visible := v.project(p)
		if !visible {
			return
		}
		xs[i], ys[i] = x, y
	}

	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.MoveTo(xs[0], ys[0])
	z.LineTo(xs[1], ys[1])
	z.LineTo(xs[2], ys[2])
	z.ClosePath()
	z.Draw(dst, b, src, image.Point{})
}

// drawOutline strokes the ring as a closed loop, one quad per visible segment.
func drawOutline(z *vector.Rasterizer, dst draw.Image, src image.Image, v view, pts []geo.Point3D, width float64) {
	n := len(pts)
	if n < 2 {
		return
	}

	b := dst.Bounds()
	half := width / 2
	for i := 0; i < n; i++ {
		ax, ay, aok := v.project(pts[i])
		bx, by, bok := v.project(pts[(i+1)%n])
		if !aok || !bok {
			continue
		}

		dx, dy := float64(bx-ax), float64(by-ay)
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := float32(-dy/l*half), float32(dx/l*half)

		z.Reset(b.Dx(), b.Dy())
		z.MoveTo(ax+nx, ay+ny)
		z.LineTo(bx+nx, by+ny)
		z.LineTo(bx-nx, by-ny)
		z.LineTo(ax-nx, ay-ny)
		z.ClosePath()
		z.Draw(dst, b, src, image.Point{})
	}
}

// EncodeWebP writes img as a lossy WebP.
func EncodeWebP(w io.Writer, img image.Image, quality float32) error {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality})
}

func normalize(p geo.Point3D) geo.Point3D {
	l := p.Length()
	if l == 0 {
		return geo.Point3D{}
	}
	return geo.Point3D{X: p.X / l, Y: p.Y / l, Z: p.Z / l}
}

func cross(a, b geo.Point3D) geo.Point3D {
	return geo.Point3D{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
