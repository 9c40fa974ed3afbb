package geometry

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestComputeDisplayedRectDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		container Size
		natural   Size
	}{
		{"zero container width", Size{0, 400}, Size{1000, 500}},
		{"zero container height", Size{800, 0}, Size{1000, 500}},
		{"zero natural width", Size{800, 400}, Size{0, 500}},
		{"zero natural height", Size{800, 400}, Size{1000, 0}},
		{"all zero", Size{}, Size{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDisplayedRect(tt.container, tt.natural)
			if got != (DisplayedRect{}) {
				t.Fatalf("expected zero rect, got %+v", got)
			}
		})
	}
}

func TestComputeDisplayedRectScenario(t *testing.T) {
	got := ComputeDisplayedRect(Size{800, 400}, Size{1000, 500})
	want := DisplayedRect{X: 0, Y: 0, W: 800, H: 400}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComputeDisplayedRectFitHeight(t *testing.T) {
	tests := []struct {
		name      string
		container Size
		natural   Size
		wantW     float64
	}{
		{"letterbox", Size{1600, 900}, Size{1080, 1920}, 506.25},
		{"crop", Size{390, 844}, Size{1920, 1080}, 1500.4444444444443},
		{"exact", Size{500, 500}, Size{100, 100}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDisplayedRect(tt.container, tt.natural)
			if got.H != tt.container.Height {
				t.Errorf("expected height %g, got %g", tt.container.Height, got.H)
			}
			if !almostEqual(got.W, tt.wantW) {
				t.Errorf("expected width %g, got %g", tt.wantW, got.W)
			}
			if got.X != (tt.container.Width-got.W)/2 {
				t.Errorf("centering broken: x=%g w=%g container=%g", got.X, got.W, tt.container.Width)
			}
			if got.Y != 0 {
				t.Errorf("expected y=0, got %g", got.Y)
			}
		})
	}
}

func TestComputeDisplayedRectCropHasNegativeX(t *testing.T) {
	got := ComputeDisplayedRect(Size{400, 500}, Size{1000, 500})
	if got.X != -300 {
		t.Fatalf("expected x=-300, got %g", got.X)
	}
}

func TestComputeDisplayedRectIdempotent(t *testing.T) {
	c, n := Size{1234, 567}, Size{3000, 2000}
	first := ComputeDisplayedRect(c, n)
	second := ComputeDisplayedRect(c, n)
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestComputeOverlayRectZeroDisplayed(t *testing.T) {
	target := NormalizedRect{X: 0.25, Y: 0.2, W: 0.5, H: 0.44}
	for _, d := range []DisplayedRect{{}, {X: 10, W: 0, H: 100}, {X: 10, W: 100, H: 0}} {
		if got := ComputeOverlayRect(d, target); got != (PixelRect{}) {
			t.Errorf("displayed %+v: expected zero rect, got %+v", d, got)
		}
	}
}

func TestComputeOverlayRect(t *testing.T) {
	d := DisplayedRect{X: 100, Y: 0, W: 800, H: 400}
	got := ComputeOverlayRect(d, NormalizedRect{X: 0.25, Y: 0.2, W: 0.5, H: 0.5})
	want := PixelRect{Left: 300, Top: 80, Width: 400, Height: 200}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComputeOverlayRectContained(t *testing.T) {
	displays := []DisplayedRect{
		{X: 0, Y: 0, W: 800, H: 400},
		{X: -300, Y: 0, W: 1000, H: 500},
		{X: 546.875, Y: 0, W: 506.25, H: 900},
	}
	steps := []float64{0, 0.1, 0.25, 0.5, 0.75, 1}

	for _, d := range displays {
		for _, x := range steps {
			for _, y := range steps {
				for _, w := range steps {
					for _, h := range steps {
						if x+w > 1 || y+h > 1 {
							continue
						}
						p := ComputeOverlayRect(d, NormalizedRect{X: x, Y: y, W: w, H: h})
						if p.Left < d.X-epsilon || p.Left+p.Width > d.X+d.W+epsilon ||
							p.Top < d.Y-epsilon || p.Top+p.Height > d.Y+d.H+epsilon {
							t.Fatalf("overlay %+v escapes displayed %+v", p, d)
						}
					}
				}
			}
		}
	}
}

func TestOverlayFollowsResize(t *testing.T) {
	natural := Size{1000, 500}
	target := NormalizedRect{X: 0.25, Y: 0.2, W: 0.5, H: 0.4}

	small := Compute(Size{800, 400}, natural, target)
	large := Compute(Size{1600, 800}, natural, target)

	if !almostEqual(large.Overlay.Width, 2*small.Overlay.Width) ||
		!almostEqual(large.Overlay.Height, 2*small.Overlay.Height) {
		t.Fatalf("overlay did not scale with container: small=%+v large=%+v", small.Overlay, large.Overlay)
	}
	if !almostEqual(large.Overlay.Left, 2*small.Overlay.Left) ||
		!almostEqual(large.Overlay.Top, 2*small.Overlay.Top) {
		t.Fatalf("overlay did not translate with container: small=%+v large=%+v", small.Overlay, large.Overlay)
	}
}

func TestDeriveTargetRectCenter(t *testing.T) {
	base := NormalizedRect{X: 0.25, Y: 0.20, W: 0.5, H: 0.44}
	got := DeriveTargetRect(base, 0.7, AnchorCenter)

	if got.X != 0.25 || got.W != 0.5 || got.H != 0.7 {
		t.Fatalf("expected x=0.25 w=0.5 h=0.7, got %+v", got)
	}
	if got.Y < 0 || got.Y > 0.3+epsilon {
		t.Fatalf("expected y in [0,0.3], got %g", got.Y)
	}
	if !almostEqual(got.Y, 0.07) {
		t.Fatalf("expected midpoint preserved at y=0.07, got %g", got.Y)
	}
}

func TestDeriveTargetRectAnchors(t *testing.T) {
	tests := []struct {
		name   string
		base   NormalizedRect
		height float64
		anchor Anchor
		wantY  float64
		wantH  float64
	}{
		{"top keeps y", NormalizedRect{0.1, 0.2, 0.8, 0.1}, 0.5, AnchorTop, 0.2, 0.5},
		{"top clamps", NormalizedRect{0.1, 0.6, 0.8, 0.1}, 0.5, AnchorTop, 0.5, 0.5},
		{"bottom keeps bottom edge", NormalizedRect{0.1, 0.6, 0.8, 0.3}, 0.5, AnchorBottom, 0.4, 0.5},
		{"bottom clamps", NormalizedRect{0.1, 0.0, 0.8, 0.2}, 0.5, AnchorBottom, 0, 0.5},
		{"center clamps low", NormalizedRect{0.1, 0.0, 0.8, 0.1}, 0.6, AnchorCenter, 0, 0.6},
		{"center clamps high", NormalizedRect{0.1, 0.9, 0.8, 0.1}, 0.6, AnchorCenter, 0.4, 0.6},
		{"height above one", NormalizedRect{0.1, 0.3, 0.8, 0.1}, 1.5, AnchorCenter, 0, 1},
		{"negative height", NormalizedRect{0.1, 0.3, 0.8, 0.2}, -1, AnchorTop, 0.3, 0},
		{"unknown anchor is center", NormalizedRect{0.1, 0.3, 0.8, 0.2}, 0.4, Anchor("diagonal"), 0.2, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTargetRect(tt.base, tt.height, tt.anchor)
			if !almostEqual(got.Y, tt.wantY) || !almostEqual(got.H, tt.wantH) {
				t.Fatalf("expected y=%g h=%g, got %+v", tt.wantY, tt.wantH, got)
			}
			if got.X != tt.base.X || got.W != tt.base.W {
				t.Fatalf("x/w changed: base %+v got %+v", tt.base, got)
			}
			if got.Y+got.H > 1+epsilon {
				t.Fatalf("rect overflows: %+v", got)
			}
		})
	}
}
