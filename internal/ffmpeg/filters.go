package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Scale adds a scale filter
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		// Return self without adding filter - allows chaining to continue
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}

// FitHeight returns even frame dimensions for a video of the given size
// scaled down to at most maxHeight pixels tall, preserving aspect ratio.
// A non-positive maxHeight or a video already short enough keeps its size.
func FitHeight(width, height, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 || maxHeight <= 0 || height <= maxHeight {
		return width, height
	}
	h := maxHeight &^ 1
	w := int(float64(width)*float64(h)/float64(height)/2+0.5) * 2
	if w < 2 {
		w = 2
	}
	return w, h
}
