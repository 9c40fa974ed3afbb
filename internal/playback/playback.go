// Package playback runs the one-shot transition video. A Session decodes
// frames on its own goroutine, reports the video's natural size once, and
// finishes with exactly one completion signal unless it is stopped first.
package playback

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/kikiluvv/envelope/internal/ffmpeg"
	"github.com/kikiluvv/envelope/internal/geometry"
	"github.com/kikiluvv/envelope/internal/media"
)

// FrameSource yields decoded frames until io.EOF
type FrameSource interface {
	Next() (*image.RGBA, error)
	// Wait releases the source and reports how decoding ended
	Wait() error
}

// Decoder opens a frame source for a video of the given natural size
type Decoder interface {
	Open(ctx context.Context, path string, natural geometry.Size) (FrameSource, error)
}

// Sizer measures the natural size of an asset
type Sizer interface {
	NaturalSize(ctx context.Context, a media.Asset) (geometry.Size, error)
}

// Callbacks receive session events. They run on the session goroutine.
type Callbacks struct {
	// Natural is called once with the video's intrinsic size
	Natural func(geometry.Size)
	// Frame is called for each decoded frame
	Frame func(*image.RGBA)
	// Done is called once when playback finishes; nil means the video ended
	Done func(error)
}

// Session is a single playback of the transition video
type Session struct {
	logger zerolog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Start begins muted playback of asset
func Start(ctx context.Context, logger zerolog.Logger, sizer Sizer, dec Decoder, asset media.Asset, cb Callbacks) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		logger: logger.With().Str("component", "playback").Str("video", asset.Path).Logger(),
		cancel: cancel,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.run(ctx, sizer, dec, asset, cb)
		if ctx.Err() != nil {
			s.logger.Debug().Msg("playback stopped")
			return
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("playback failed")
		} else {
			s.logger.Info().Msg("playback ended")
		}
		if cb.Done != nil {
			cb.Done(err)
		}
	}()

	return s
}

func (s *Session) run(ctx context.Context, sizer Sizer, dec Decoder, asset media.Asset, cb Callbacks) error {
	natural, err := sizer.NaturalSize(ctx, asset)
	if err != nil {
		return fmt.Errorf("failed to measure video: %w", err)
	}
	if natural.IsZero() {
		return fmt.Errorf("video %s has no dimensions", asset.Path)
	}
	if cb.Natural != nil {
		cb.Natural(natural)
	}

	src, err := dec.Open(ctx, asset.Path, natural)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}

	var readErr error
	frames := 0
	for ctx.Err() == nil {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		frames++
		if cb.Frame != nil {
			cb.Frame(frame)
		}
	}

	err = multierr.Combine(readErr, src.Wait())
	if err == nil && frames == 0 && ctx.Err() == nil {
		err = fmt.Errorf("video %s produced no frames", asset.Path)
	}
	s.logger.Debug().Int("frames", frames).Msg("decode finished")
	return err
}

// Stop cancels playback and waits for the decoder to be released. No
// callback runs after Stop returns. Stop is idempotent.
func (s *Session) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

// FFmpegDecoder decodes through an ffmpeg Executor, optionally capping the
// decoded height to bound memory use.
type FFmpegDecoder struct {
	Exec      *ffmpeg.Executor
	MaxHeight int
}

// Open implements Decoder
func (d FFmpegDecoder) Open(ctx context.Context, path string, natural geometry.Size) (FrameSource, error) {
	if d.Exec == nil {
		return nil, fmt.Errorf("ffmpeg is not available")
	}
	w, h := ffmpeg.FitHeight(int(natural.Width), int(natural.Height), d.MaxHeight)

	fb := ffmpeg.NewFilterBuilder()
	if w != int(natural.Width) || h != int(natural.Height) {
		fb.Scale(w, h)
	}

	return d.Exec.StreamFrames(ctx, ffmpeg.StreamOptions{
		Input:   path,
		Width:   w,
		Height:  h,
		Filters: fb.Build(),
	})
}
