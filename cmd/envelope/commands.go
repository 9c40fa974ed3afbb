package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/envelope/internal/config"
	"github.com/kikiluvv/envelope/internal/ffmpeg"
	"github.com/kikiluvv/envelope/internal/geometry"
	"github.com/kikiluvv/envelope/internal/gui"
	"github.com/kikiluvv/envelope/internal/logging"
	"github.com/kikiluvv/envelope/internal/media"
	"github.com/kikiluvv/envelope/internal/snapshot"
	"github.com/kikiluvv/envelope/pkg/util"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the envelope window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		return gui.Run(cmd.Context(), log.Logger, cfg)
	},
}

var (
	layoutAsset   string
	layoutNatural string
)

var layoutCmd = &cobra.Command{
	Use:   "layout [width] [height]",
	Short: "Print the media and letter rectangles for a window size",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		container, err := parseSize(args[0], args[1])
		if err != nil {
			return err
		}

		natural, err := layoutNaturalSize(cfg)
		if err != nil {
			return err
		}

		target := cfg.Overlay.Target()
		l := geometry.Compute(container, natural, target)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "container  %v\n", l.Container)
		fmt.Fprintf(out, "natural    %v\n", l.Natural)
		fmt.Fprintf(out, "target     x=%.4f y=%.4f w=%.4f h=%.4f (%s)\n", target.X, target.Y, target.W, target.H, cfg.Overlay.Anchor)
		fmt.Fprintf(out, "displayed  x=%.2f y=%.2f w=%.2f h=%.2f\n", l.Displayed.X, l.Displayed.Y, l.Displayed.W, l.Displayed.H)
		fmt.Fprintf(out, "overlay    %v\n", l.Overlay)
		return nil
	},
}

func layoutNaturalSize(cfg *config.Config) (geometry.Size, error) {
	if layoutNatural != "" {
		w, h, ok := strings.Cut(strings.ToLower(layoutNatural), "x")
		if !ok {
			return geometry.Size{}, fmt.Errorf("natural size must look like 1000x500, got %q", layoutNatural)
		}
		return parseSize(w, h)
	}

	path := cfg.Assets.OpenImage
	if layoutAsset == "closed" {
		path = cfg.Assets.ClosedImage
	}
	return media.ImageSize(path)
}

func parseSize(w, h string) (geometry.Size, error) {
	width, err := parseDimension(w)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid width %q", w)
	}
	height, err := parseDimension(h)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid height %q", h)
	}
	return geometry.Size{Width: width, Height: height}, nil
}

// parseDimension accepts finite, non-negative pixel counts
func parseDimension(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%q is not a finite non-negative size", s)
	}
	return v, nil
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Report the kind and natural size of every asset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		logger := logging.WithComponent("probe")

		var prober media.VideoProber
		exec, err := ffmpeg.New(logger, ffmpeg.Options{
			BinaryPath: cfg.FFmpeg.BinaryPath,
			ProbePath:  cfg.FFmpeg.ProbePath,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("video sizes unavailable")
		} else {
			prober = exec
		}
		inspector := media.NewInspector(logger, prober)

		set := media.NewSet(cfg.Assets.ClosedImage, cfg.Assets.Video, cfg.Assets.OpenImage)
		out := cmd.OutOrStdout()
		failed := 0
		for _, asset := range set.All() {
			detected, err := media.Detect(asset.Path)
			if err != nil {
				fmt.Fprintf(out, "%-6s %s: %v\n", asset.Kind, asset.Path, err)
				failed++
				continue
			}
			if detected.Kind != asset.Kind {
				logger.Warn().
					Str("path", asset.Path).
					Stringer("want", asset.Kind).
					Stringer("got", detected.Kind).
					Msg("asset kind mismatch")
			}

			size, err := inspector.NaturalSize(cmd.Context(), asset)
			if err != nil {
				fmt.Fprintf(out, "%-6s %s (%s): %v\n", asset.Kind, asset.Path, detected.MIME, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "%-6s %s (%s) %v\n", asset.Kind, asset.Path, detected.MIME, size)

			if asset.Kind == media.KindVideo && exec != nil {
				if info, err := exec.ProbeVideo(cmd.Context(), asset.Path); err == nil {
					fmt.Fprintf(out, "       %s, duration %s at %.2f fps, rotation %d, audio=%t (played muted)\n",
						info.VideoCodec, util.FormatDuration(info.Duration), info.FPS, info.Rotation, info.HasAudio)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d asset(s) could not be probed", failed)
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [width] [height] [output.png]",
	Short: "Render the open letter at a window size without opening a window",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		container, err := parseSize(args[0], args[1])
		if err != nil {
			return err
		}

		bg, err := media.LoadImage(cfg.Assets.OpenImage)
		if err != nil {
			return err
		}

		text, err := cfg.LetterText()
		if err != nil {
			return err
		}
		if text == "" {
			text = cfg.Letter.Placeholder
		}

		img, l, err := snapshot.Render(snapshot.Options{
			Container:  container,
			Background: bg,
			Target:     cfg.Overlay.Target(),
			Text:       text,
			Padding:    16,
		})
		if err != nil {
			return err
		}

		out := args[2]
		if err := util.EnsureParentDir(out); err != nil {
			return err
		}
		if err := imaging.Save(img, out); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		log.Info().
			Str("output", out).
			Stringer("overlay", l.Overlay).
			Msg("snapshot written")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./envelope.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	layoutCmd.Flags().StringVar(&layoutAsset, "asset", "open", "image to measure (open|closed)")
	layoutCmd.Flags().StringVar(&layoutNatural, "natural", "", "natural media size as WxH instead of measuring an image")

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
