package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// makeTestVideo renders a short synthetic clip into a temp dir
func makeTestVideo(t *testing.T, size string, seconds string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size="+size+":rate=10",
		"-t", seconds, "-pix_fmt", "yuv420p", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not generate test video: %v\n%s", err, out)
	}
	return path
}

func TestFrameReader(t *testing.T) {
	frame := bytes.Repeat([]byte{1, 2, 3, 4}, 2*3)
	data := append(append([]byte{}, frame...), frame...)

	fr := NewFrameReader(bytes.NewReader(data), 2, 3)
	for i := 0; i < 2; i++ {
		img, err := fr.Next()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 3 {
			t.Fatalf("unexpected bounds %v", img.Bounds())
		}
		if !bytes.Equal(img.Pix, frame) {
			t.Fatalf("frame %d content mismatch", i)
		}
	}

	if _, err := fr.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestFrameReaderTruncated(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(make([]byte, 10)), 2, 2)
	_, err := fr.Next()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestFitHeight(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1920, 1080, 0, 1920, 1080},
		{1920, 1080, 1080, 1920, 1080},
		{1920, 1080, 720, 1280, 720},
		{1080, 1920, 721, 406, 720},
		{0, 0, 720, 0, 0},
	}

	for _, tt := range tests {
		w, h := FitHeight(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FitHeight(%d,%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFilterBuilder(t *testing.T) {
	got := NewFilterBuilder().Scale(1280, 720).Scale(0, 10).Build()
	want := "scale=1280:720"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if NewFilterBuilder().Build() != "" {
		t.Fatal("expected empty chain")
	}
}

func TestParseProbe(t *testing.T) {
	out := []byte(`{
		"format": {"duration": "2.500000"},
		"streams": [
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "video", "codec_name": "h264", "width": 1080, "height": 1920, "r_frame_rate": "30000/1001"},
			{"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 320, "r_frame_rate": "90000/1"}
		]
	}`)

	info, err := parseProbe(out)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.Width != 1080 || info.Height != 1920 {
		t.Errorf("expected 1080x1920, got %dx%d", info.Width, info.Height)
	}
	if info.Duration != 2500*time.Millisecond {
		t.Errorf("expected 2.5s, got %v", info.Duration)
	}
	if !info.HasAudio {
		t.Error("expected audio stream to be detected")
	}
	if info.FPS < 29.9 || info.FPS > 30 {
		t.Errorf("unexpected fps %f", info.FPS)
	}
}

func TestParseProbeRotation(t *testing.T) {
	tests := []struct {
		name         string
		stream       string
		wantW, wantH int
		wantRotation int
	}{
		{"display matrix -90", `"side_data_list": [{"side_data_type": "Display Matrix", "rotation": -90}]`, 1080, 1920, 90},
		{"display matrix 90", `"side_data_list": [{"rotation": 90}]`, 1080, 1920, 270},
		{"display matrix 180", `"side_data_list": [{"rotation": 180}]`, 1920, 1080, 180},
		{"rotate tag", `"tags": {"rotate": "270"}`, 1080, 1920, 270},
		{"no rotation", `"tags": {"language": "und"}`, 1920, 1080, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := []byte(`{"streams": [{"codec_type": "video", "width": 1920, "height": 1080, ` + tt.stream + `}]}`)
			info, err := parseProbe(out)
			if err != nil {
				t.Fatalf("parseProbe failed: %v", err)
			}
			if info.Width != tt.wantW || info.Height != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, info.Width, info.Height)
			}
			if info.Rotation != tt.wantRotation {
				t.Errorf("expected rotation %d, got %d", tt.wantRotation, info.Rotation)
			}
		})
	}
}

func TestParseProbeNoVideo(t *testing.T) {
	if _, err := parseProbe([]byte(`{"streams":[{"codec_type":"audio"}]}`)); err == nil {
		t.Fatal("expected error for audio-only input")
	}
	if _, err := parseProbe([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestStreamOutputParsesProgress(t *testing.T) {
	input := strings.Join([]string{
		"frame=12",
		"fps=10.0",
		"out_time=00:00:01.200000",
		"speed=1.0x",
		"progress=continue",
		"Error while decoding stream #0:0",
	}, "\n")

	var progress []*Progress
	var logs []string
	streamOutput(strings.NewReader(input),
		func(p *Progress) { progress = append(progress, p) },
		func(line string) { logs = append(logs, line) })

	if len(progress) != 1 || progress[0].Frame != 12 || progress[0].Time != "00:00:01.200000" {
		t.Fatalf("unexpected progress %+v", progress)
	}
	if len(logs) != 1 || !strings.HasPrefix(logs[0], "Error") {
		t.Fatalf("unexpected log lines %v", logs)
	}
}

func TestNewMissingBinary(t *testing.T) {
	_, err := New(zerolog.Nop(), Options{BinaryPath: "definitely-not-ffmpeg-binary"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProbeAndStream(t *testing.T) {
	skipIfNoFFmpeg(t)

	path := makeTestVideo(t, "64x48", "0.5")

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	exec, err := New(logger, Options{Threads: 1})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	info, err := exec.ProbeVideo(ctx, path)
	if err != nil {
		t.Fatalf("ProbeVideo failed: %v", err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Fatalf("expected 64x48, got %dx%d", info.Width, info.Height)
	}

	var mu sync.Mutex
	var progress []Progress
	stream, err := exec.StreamFrames(ctx, StreamOptions{
		Input:  path,
		Width:  info.Width,
		Height: info.Height,
		ProgressHandler: func(p *Progress) {
			mu.Lock()
			progress = append(progress, *p)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("StreamFrames failed: %v", err)
	}

	frames := 0
	for {
		_, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading frames: %v", err)
		}
		frames++
	}
	if err := stream.Wait(); err != nil {
		t.Fatalf("ffmpeg exited with error: %v", err)
	}
	if frames == 0 {
		t.Fatal("expected at least one frame")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(progress) == 0 || progress[len(progress)-1].Frame == 0 {
		t.Fatalf("expected progress reports, got %+v", progress)
	}
	t.Logf("decoded %d frames of %dx%d", frames, info.Width, info.Height)
}
