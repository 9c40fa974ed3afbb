package ffmpeg

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a required binary cannot be located
var ErrNotFound = errors.New("binary not found")

// VideoInfo contains metadata about a video file. Width and Height are the
// display size, after rotation metadata has been applied.
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	Rotation   int
	FPS        float64
	VideoCodec string
	HasAudio   bool
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// Options locates the ffmpeg binaries
type Options struct {
	BinaryPath string
	ProbePath  string
	Threads    int
}

// StreamOptions configures a raw frame decode
type StreamOptions struct {
	Input string
	// Width and Height are the dimensions of emitted frames
	Width  int
	Height int
	// Filters is an optional -vf chain, see FilterBuilder
	Filters         string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)
