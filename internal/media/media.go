// Package media describes the three assets shown by the view and reports
// their intrinsic pixel dimensions.
package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kikiluvv/envelope/internal/ffmpeg"
	"github.com/kikiluvv/envelope/internal/geometry"
)

// ErrUnknownFormat is returned when an asset is neither an image nor a video
var ErrUnknownFormat = errors.New("unknown media format")

// Kind is the broad media type of an asset
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Asset is a media file in a given role
type Asset struct {
	Path string
	Kind Kind
}

// Set is the closed splash, the transition video and the open background
type Set struct {
	Closed Asset
	Video  Asset
	Open   Asset
}

// NewSet builds a Set from the three configured paths
func NewSet(closedImage, video, openImage string) Set {
	return Set{
		Closed: Asset{Path: closedImage, Kind: KindImage},
		Video:  Asset{Path: video, Kind: KindVideo},
		Open:   Asset{Path: openImage, Kind: KindImage},
	}
}

// All returns the assets in display order
func (s Set) All() []Asset {
	return []Asset{s.Closed, s.Video, s.Open}
}

// Detected is the result of sniffing a file header
type Detected struct {
	Kind      Kind
	MIME      string
	Extension string
}

// Detect sniffs the file header to determine what kind of media path holds
func Detect(path string) (Detected, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detected{}, err
	}
	defer f.Close()

	// 261 bytes is enough for every matcher filetype ships
	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Detected{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return Detected{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	d := Detected{MIME: kind.MIME.Value, Extension: kind.Extension}
	switch {
	case filetype.IsImage(head):
		d.Kind = KindImage
	case filetype.IsVideo(head):
		d.Kind = KindVideo
	default:
		return Detected{}, fmt.Errorf("%s (%s): %w", path, d.MIME, ErrUnknownFormat)
	}
	return d, nil
}

// ImageSize reads the intrinsic size of an image without decoding pixels
func ImageSize(path string) (geometry.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return geometry.Size{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return geometry.NewSize(cfg.Width, cfg.Height), nil
}

// LoadImage decodes an image, honouring EXIF orientation
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return img, nil
}

// Downscale shrinks img to maxHeight keeping its aspect ratio. Images
// already within bounds, or a maxHeight of zero, are returned as is.
func Downscale(img image.Image, maxHeight int) image.Image {
	if maxHeight <= 0 || img.Bounds().Dy() <= maxHeight {
		return img
	}
	return resize.Resize(0, uint(maxHeight), img, resize.Bilinear)
}

// VideoProber reports stream metadata for a video file
type VideoProber interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// Inspector resolves natural sizes for any asset kind
type Inspector struct {
	logger zerolog.Logger
	prober VideoProber
}

// NewInspector creates an inspector. prober may be nil when no video
// needs measuring.
func NewInspector(logger zerolog.Logger, prober VideoProber) *Inspector {
	return &Inspector{
		logger: logger.With().Str("component", "media").Logger(),
		prober: prober,
	}
}

// NaturalSize returns the intrinsic pixel size of a
func (i *Inspector) NaturalSize(ctx context.Context, a Asset) (geometry.Size, error) {
	switch a.Kind {
	case KindImage:
		size, err := ImageSize(a.Path)
		if err != nil {
			return geometry.Size{}, err
		}
		i.logger.Debug().Str("path", a.Path).Stringer("size", size).Msg("image measured")
		return size, nil
	case KindVideo:
		if i.prober == nil {
			return geometry.Size{}, fmt.Errorf("no video prober configured for %s", a.Path)
		}
		info, err := i.prober.ProbeVideo(ctx, a.Path)
		if err != nil {
			return geometry.Size{}, err
		}
		return geometry.NewSize(info.Width, info.Height), nil
	default:
		return geometry.Size{}, fmt.Errorf("%s: %w", a.Path, ErrUnknownFormat)
	}
}
