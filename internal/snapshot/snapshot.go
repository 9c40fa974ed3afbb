// Package snapshot composes the open state into a still image without a
// window: the background fitted by height, the letter panel placed by the
// geometry engine, and the letter text wrapped inside it.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kikiluvv/envelope/internal/geometry"
)

// Options configures a render
type Options struct {
	Container  geometry.Size
	Background image.Image
	Target     geometry.NormalizedRect
	Text       string
	// PanelOpacity defaults to 0.95
	PanelOpacity float64
	// Padding is the inner panel margin in pixels
	Padding int
}

var (
	panelColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	textColor  = color.NRGBA{R: 31, G: 41, B: 55, A: 255}
)

// Render draws the open state into a container-sized image. It returns the
// layout used so callers can report it.
func Render(opts Options) (*image.NRGBA, geometry.Layout, error) {
	if opts.Container.IsZero() {
		return nil, geometry.Layout{}, fmt.Errorf("container size %v has no area", opts.Container)
	}
	if opts.Background == nil {
		return nil, geometry.Layout{}, fmt.Errorf("background image is required")
	}

	b := opts.Background.Bounds()
	natural := geometry.NewSize(b.Dx(), b.Dy())
	layout := geometry.Compute(opts.Container, natural, opts.Target)

	canvas := imaging.New(round(opts.Container.Width), round(opts.Container.Height), color.Black)

	d := layout.Displayed
	if w, h := round(d.W), round(d.H); w > 0 && h > 0 {
		fitted := imaging.Resize(opts.Background, w, h, imaging.Lanczos)
		canvas = imaging.Paste(canvas, fitted, image.Pt(round(d.X), round(d.Y)))
	}

	o := layout.Overlay
	if w, h := round(o.Width), round(o.Height); w > 0 && h > 0 {
		opacity := opts.PanelOpacity
		if opacity <= 0 {
			opacity = 0.95
		}
		panel := imaging.New(w, h, panelColor)
		origin := image.Pt(round(o.Left), round(o.Top))
		canvas = imaging.Overlay(canvas, panel, origin, opacity)

		inner := image.Rect(origin.X, origin.Y, origin.X+w, origin.Y+h).Inset(opts.Padding)
		drawText(canvas, inner, opts.Text)
	}

	return canvas, layout, nil
}

// drawText writes text into r, wrapping on word boundaries and dropping
// whatever does not fit vertically.
func drawText(dst *image.NRGBA, r image.Rectangle, text string) {
	if r.Empty() || strings.TrimSpace(text) == "" {
		return
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: face,
	}

	lineHeight := face.Metrics().Height.Ceil()
	y := r.Min.Y + face.Metrics().Ascent.Ceil()
	for _, line := range wrap(d, text, r.Dx()) {
		if y > r.Max.Y {
			return
		}
		d.Dot = fixed.P(r.Min.X, y)
		d.DrawString(line)
		y += lineHeight
	}
}

// wrap splits text into lines no wider than width pixels. Explicit line
// breaks are kept; a single word wider than width gets its own line.
func wrap(d *font.Drawer, text string, width int) []string {
	var lines []string
	limit := fixed.I(width)

	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if d.MeasureString(candidate) <= limit {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

func round(v float64) int {
	return int(math.Round(v))
}
