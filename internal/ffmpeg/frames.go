package ffmpeg

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// FrameReader splits a rawvideo rgba byte stream into frames
type FrameReader struct {
	r      io.Reader
	width  int
	height int
	frames int
}

// NewFrameReader reads width x height RGBA frames from r
func NewFrameReader(r io.Reader, width, height int) *FrameReader {
	return &FrameReader{r: r, width: width, height: height}
}

// Next returns the next full frame. It returns io.EOF when the stream ends
// cleanly on a frame boundary and io.ErrUnexpectedEOF for a truncated frame.
func (fr *FrameReader) Next() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, fr.width, fr.height))
	if _, err := io.ReadFull(fr.r, img.Pix); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("frame %d: %w", fr.frames, err)
	}
	fr.frames++
	return img, nil
}
