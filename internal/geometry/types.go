package geometry

import (
	"fmt"
	"strings"
)

// Size is a width/height pair in pixels. It is either a measured container
// size or the intrinsic size of a media asset.
type Size struct {
	Width  float64
	Height float64
}

// NewSize creates a Size from integer pixel dimensions
func NewSize(width, height int) Size {
	return Size{Width: float64(width), Height: float64(height)}
}

// IsZero reports whether either dimension is zero
func (s Size) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// NormalizedRect is a region expressed as fractions of the intrinsic media
// size. X+W and Y+H are expected to stay within 1 but are not enforced.
type NormalizedRect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Validate checks that every component lies in [0,1]
func (r NormalizedRect) Validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{{"x", r.X}, {"y", r.Y}, {"w", r.W}, {"h", r.H}} {
		if c.v < 0 || c.v > 1 {
			return fmt.Errorf("%s=%g out of range [0,1]", c.name, c.v)
		}
	}
	return nil
}

// Overflow reports a rect that extends past the right or bottom edge of the
// media. Such a rect still maps, but the panel spills outside the picture.
func (r NormalizedRect) Overflow() error {
	if r.X+r.W > 1 {
		return fmt.Errorf("x+w=%g exceeds 1", r.X+r.W)
	}
	if r.Y+r.H > 1 {
		return fmt.Errorf("y+h=%g exceeds 1", r.Y+r.H)
	}
	return nil
}

// DisplayedRect is where the fitted media lands inside the container
type DisplayedRect struct {
	X float64
	Y float64
	W float64
	H float64
}

// IsZero reports whether nothing is displayed
func (d DisplayedRect) IsZero() bool {
	return d.W == 0 || d.H == 0
}

// PixelRect is an absolute rectangle relative to the container origin
type PixelRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// IsZero reports whether the rect has no area
func (p PixelRect) IsZero() bool {
	return p.Width == 0 || p.Height == 0
}

func (p PixelRect) String() string {
	return fmt.Sprintf("left=%.2f top=%.2f width=%.2f height=%.2f", p.Left, p.Top, p.Width, p.Height)
}

// Anchor selects which edge of the base region stays fixed when its height
// is expanded by DeriveTargetRect.
type Anchor string

const (
	AnchorCenter Anchor = "center"
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// ParseAnchor converts a string into an Anchor
func ParseAnchor(s string) (Anchor, error) {
	switch a := Anchor(strings.ToLower(strings.TrimSpace(s))); a {
	case AnchorCenter, AnchorTop, AnchorBottom:
		return a, nil
	case "":
		return AnchorCenter, nil
	default:
		return "", fmt.Errorf("unknown anchor %q (want center, top or bottom)", s)
	}
}

// UnmarshalText lets anchors be decoded from configuration files
func (a *Anchor) UnmarshalText(text []byte) error {
	parsed, err := ParseAnchor(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (a Anchor) MarshalText() ([]byte, error) {
	return []byte(a), nil
}
