// Package geometry maps a region defined in a media asset's intrinsic
// coordinate space onto absolute pixels inside a fluid container.
//
// Media is fitted by height: it is scaled uniformly so its rendered height
// equals the container height and is centered horizontally. A media asset
// wider than the container is cropped on both sides (negative X), a
// narrower one is letterboxed. Neither case is corrected.
package geometry

// ComputeDisplayedRect returns where media of the given natural size lands
// inside the container. Unmeasured containers or unloaded media produce a
// zero rect.
func ComputeDisplayedRect(container, natural Size) DisplayedRect {
	if container.IsZero() || natural.IsZero() {
		return DisplayedRect{}
	}

	scale := container.Height / natural.Height
	w := natural.Width * scale
	return DisplayedRect{
		X: (container.Width - w) / 2,
		Y: 0,
		W: w,
		H: container.Height,
	}
}

// ComputeOverlayRect scales and translates target into container pixels
// using the displayed media rect.
func ComputeOverlayRect(displayed DisplayedRect, target NormalizedRect) PixelRect {
	if displayed.IsZero() {
		return PixelRect{}
	}

	return PixelRect{
		Left:   displayed.X + target.X*displayed.W,
		Top:    displayed.Y + target.Y*displayed.H,
		Width:  target.W * displayed.W,
		Height: target.H * displayed.H,
	}
}

// DeriveTargetRect expands base to targetHeight, keeping X and W, with the
// anchor deciding which part of base stays put. The result never leaves
// the [0,1] vertical range.
func DeriveTargetRect(base NormalizedRect, targetHeight float64, anchor Anchor) NormalizedRect {
	th := clamp(targetHeight, 0, 1)
	maxY := 1 - th

	var y float64
	switch anchor {
	case AnchorTop:
		y = base.Y
	case AnchorBottom:
		y = base.Y + base.H - th
	default:
		mid := base.Y + base.H/2
		y = mid - th/2
	}

	return NormalizedRect{
		X: base.X,
		Y: clamp(y, 0, maxY),
		W: base.W,
		H: th,
	}
}

// Layout is the full mapping result for one snapshot of inputs
type Layout struct {
	Container Size
	Natural   Size
	Displayed DisplayedRect
	Overlay   PixelRect
}

// Compute runs the whole pipeline for one (container, natural, target)
// snapshot. Nothing is carried over between calls.
func Compute(container, natural Size, target NormalizedRect) Layout {
	displayed := ComputeDisplayedRect(container, natural)
	return Layout{
		Container: container,
		Natural:   natural,
		Displayed: displayed,
		Overlay:   ComputeOverlayRect(displayed, target),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
