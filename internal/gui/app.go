package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/envelope/internal/config"
	"github.com/kikiluvv/envelope/internal/ffmpeg"
	"github.com/kikiluvv/envelope/internal/media"
	"github.com/kikiluvv/envelope/internal/playback"
)

// AppID identifies the application to fyne
const AppID = "io.github.kikiluvv.envelope"

// Run opens the window and blocks until it is closed
func Run(ctx context.Context, logger zerolog.Logger, cfg *config.Config) error {
	// Without ffmpeg the video fails to play and the view opens directly
	var prober media.VideoProber
	exec, err := ffmpeg.New(logger, ffmpeg.Options{
		BinaryPath: cfg.FFmpeg.BinaryPath,
		ProbePath:  cfg.FFmpeg.ProbePath,
		Threads:    cfg.FFmpeg.Threads,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("ffmpeg unavailable, video will be skipped")
	} else {
		prober = exec
	}

	letter, err := cfg.LetterText()
	if err != nil {
		return err
	}

	a := app.NewWithID(AppID)
	w := a.NewWindow(cfg.Window.Title)

	view := NewView(Params{
		Logger:      logger,
		Assets:      media.NewSet(cfg.Assets.ClosedImage, cfg.Assets.Video, cfg.Assets.OpenImage),
		Target:      cfg.Overlay.Target(),
		Letter:      letter,
		Placeholder: cfg.Letter.Placeholder,
		Sizer:       media.NewInspector(logger, prober),
		Decoder:     playback.FFmpegDecoder{Exec: exec, MaxHeight: cfg.FFmpeg.MaxHeight},
		MaxHeight:   cfg.FFmpeg.MaxHeight,
	})

	w.SetContent(view.Root())
	w.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	w.SetOnClosed(view.Stop)

	view.Start(ctx)

	logger.Info().
		Str("title", cfg.Window.Title).
		Float32("width", cfg.Window.Width).
		Float32("height", cfg.Window.Height).
		Msg("window opened")

	w.ShowAndRun()
	return nil
}
