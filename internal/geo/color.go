package geo

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an RGB triple with a separate alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

// ParseColor accepts "#rrggbb", "#rgb", "rgb(r, g, b)" and "rgba(r, g, b, a)".
// For rgba the alpha is the text after the last comma.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], false)
	}

	return Color{}, fmt.Errorf("unsupported color %q", s)
}

// MustParseColor is ParseColor for compile-time constants.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(h string) (Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", "#"+h)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", "#"+h, err)
	}

	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
}

func parseFunc(body string, withAlpha bool) (Color, error) {
	alpha := 1.0
	if withAlpha {
		idx := strings.LastIndex(body, ",")
		if idx < 0 {
			return Color{}, fmt.Errorf("rgba without alpha: %q", body)
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(body[idx+1:]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("invalid alpha: %w", err)
		}
		alpha = min(max(a, 0), 1)
		body = body[:idx]
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("expected 3 color channels, got %d", len(parts))
	}

	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, fmt.Errorf("invalid channel %q: %w", p, err)
		}
		ch[i] = uint8(min(max(v, 0), 255))
	}

	return Color{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

// String formats the color in the rgba() notation.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// WithOpacity returns a copy with alpha multiplied by o.
func (c Color) WithOpacity(o float64) Color {
	c.A = min(max(c.A*o, 0), 1)
	return c
}

// NRGBA converts to a non-premultiplied image color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(c.A*255 + 0.5)}
}

// MarshalText lets colors round-trip through YAML and JSON as CSS strings.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses any notation accepted by ParseColor.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
