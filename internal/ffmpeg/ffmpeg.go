package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Executor handles ffmpeg and ffprobe invocations
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates a new ffmpeg executor
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	ffmpegPath, err := lookup(opts.BinaryPath, "ffmpeg")
	if err != nil {
		return nil, err
	}

	ffprobePath, err := lookup(opts.ProbePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     opts.Threads,
	}, nil
}

func lookup(configured, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	return path, nil
}

// Stream is a running ffmpeg decode emitting raw RGBA frames on stdout
type Stream struct {
	*FrameReader

	cmd    *exec.Cmd
	stdout io.ReadCloser
	wg     sync.WaitGroup
}

// Wait blocks until ffmpeg exits and its stderr has been drained
func (s *Stream) Wait() error {
	// unblock ffmpeg if the consumer stopped reading early
	_ = s.stdout.Close()
	s.wg.Wait()
	return s.cmd.Wait()
}

// StreamFrames starts decoding opts.Input into RGBA frames at the native
// frame rate. Audio is discarded. Cancelling ctx kills the process.
func (e *Executor) StreamFrames(ctx context.Context, opts StreamOptions) (*Stream, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}

	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}
	args = append(args, "-progress", "pipe:2", "-re", "-i", opts.Input, "-an")
	if opts.Filters != "" {
		args = append(args, "-vf", opts.Filters)
	}
	args = append(args, "-f", "rawvideo", "-pix_fmt", "rgba", "pipe:1")

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("starting frame stream")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	s := &Stream{
		FrameReader: NewFrameReader(stdout, opts.Width, opts.Height),
		cmd:         cmd,
		stdout:      stdout,
	}

	logHandler := opts.LogHandler
	if logHandler == nil {
		logHandler = func(line string) {
			e.logger.Debug().Str("stderr", line).Msg("ffmpeg output")
		}
	}

	progressHandler := opts.ProgressHandler
	if progressHandler == nil {
		progressHandler = func(p *Progress) {
			e.logger.Debug().
				Int("frame", p.Frame).
				Float64("fps", p.FPS).
				Str("time", p.Time).
				Str("speed", p.Speed).
				Msg("decode progress")
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		streamOutput(stderr, progressHandler, logHandler)
	}()

	return s, nil
}

// streamOutput parses ffmpeg output and calls handlers
func streamOutput(r io.Reader, progressHandler ProgressFunc, logHandler func(string)) {
	scanner := bufio.NewScanner(r)
	progressData := &Progress{}

	for scanner.Scan() {
		line := scanner.Text()

		// Parse progress lines
		switch {
		case strings.HasPrefix(line, "frame="):
			fmt.Sscanf(line, "frame=%d", &progressData.Frame)
		case strings.HasPrefix(line, "fps="):
			fmt.Sscanf(line, "fps=%f", &progressData.FPS)
		case strings.HasPrefix(line, "bitrate="):
			progressData.Bitrate = value(line)
		case strings.HasPrefix(line, "out_time="):
			progressData.Time = value(line)
		case strings.HasPrefix(line, "speed="):
			progressData.Speed = value(line)
		case strings.HasPrefix(line, "progress="):
			// End of progress block
			if progressHandler != nil && progressData.Frame > 0 {
				progressHandler(progressData)
			}
			progressData = &Progress{}
		default:
			if strings.Contains(line, "=") && !strings.Contains(line, " ") {
				// other progress keys
				continue
			}
			if logHandler != nil {
				logHandler(line)
			}
		}
	}
}

func value(line string) string {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
