package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/logging"
	"github.com/yh284914425/video-progress/internal/raster"
	"github.com/yh284914425/video-progress/internal/source"
	"github.com/yh284914425/video-progress/internal/video"
)

type fakeSource struct {
	info    source.Info
	corrupt map[int][]byte
	onNext  func(i int)
	i       int
}

func newFakeSource(frames int) *fakeSource {
	return &fakeSource{info: source.Info{
		Path:       "input.mp4",
		Width:      testFrame.Dx(),
		Height:     testFrame.Dy(),
		FrameCount: frames,
		FPS:        30,
	}}
}

func (s *fakeSource) Info() source.Info { return s.info }

func (s *fakeSource) Next(ctx context.Context) (*source.Frame, error) {
	if s.onNext != nil {
		s.onNext(s.i)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.i >= s.info.FrameCount {
		return nil, io.EOF
	}
	idx := s.i
	s.i++
	if raw, ok := s.corrupt[idx]; ok {
		return &source.Frame{Index: idx, Raw: raw, Err: &source.FrameDecodeError{Index: idx, Err: errors.New("bad packet")}}, nil
	}
	img := image.NewRGBA(testFrame)
	raster.FillRect(img, img.Rect, color.RGBA{A: 255}, 1)
	return &source.Frame{Index: idx, Image: img}, nil
}

func (s *fakeSource) Close() error { return nil }

type fakeWriter struct {
	path    string
	frames  []*image.RGBA
	aborted bool
}

func (w *fakeWriter) WriteFrame(img *image.RGBA) error {
	cp := image.NewRGBA(img.Rect)
	copy(cp.Pix, img.Pix)
	w.frames = append(w.frames, cp)
	return nil
}

func (w *fakeWriter) Close() error { return os.WriteFile(w.path, []byte("video"), 0644) }

func (w *fakeWriter) Abort() error {
	w.aborted = true
	return nil
}

type fakeEncoder struct {
	opened int
	params video.Params
	writer *fakeWriter
}

func (e *fakeEncoder) Open(ctx context.Context, path string, params video.Params) (video.FrameWriter, error) {
	e.opened++
	e.params = params
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return nil, err
	}
	e.writer = &fakeWriter{path: path}
	return e.writer, nil
}

type fakeRemuxer struct {
	err   error
	calls int
}

func (r *fakeRemuxer) Remux(ctx context.Context, videoPath, audioSource, outPath string) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(outPath, []byte("video+audio"), 0644)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.RenderConfig = plainRender()
	cfg.OutputVideo = filepath.Join(t.TempDir(), "out.mp4")
	return cfg
}

// fillCount counts bar colored pixels along a row through the middle of the track.
func fillCount(img *image.RGBA) int {
	cyan := color.RGBA{G: 255, B: 255, A: 255}
	n := 0
	for x := 0; x < img.Rect.Dx(); x++ {
		if img.RGBAAt(x, 70) == cyan {
			n++
		}
	}
	return n
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunFillGrowsWithFrames(t *testing.T) {
	cfg := testConfig(t)
	enc := &fakeEncoder{}
	var progress [][2]int
	p := NewVideoProject(cfg, newFakeSource(10), enc, nil, nil)
	p.OnProgress = func(written, total int) { progress = append(progress, [2]int{written, total}) }

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	frames := enc.writer.frames
	if len(frames) != 10 || report.FramesWritten != 10 {
		t.Fatalf("wrote %d frames, report says %d", len(frames), report.FramesWritten)
	}
	prev := -1
	for i, f := range frames {
		n := fillCount(f)
		t.Logf("frame %d: fill %d", i, n)
		if n <= prev {
			t.Errorf("frame %d: fill %d does not grow past %d", i, n, prev)
		}
		prev = n
	}
	if n := fillCount(frames[0]); n != 0 {
		t.Errorf("first frame fill = %d, want 0", n)
	}
	if n := fillCount(frames[9]); n != 150 {
		t.Errorf("last frame fill = %d, want the whole track", n)
	}

	if enc.params.Encoder != "libx264" || enc.params.Quality != 23 {
		t.Errorf("encoder params = %+v", enc.params)
	}
	if len(progress) != 10 || progress[9] != [2]int{10, 10} {
		t.Errorf("progress callbacks = %v", progress)
	}
	if !report.Silent || len(report.Warnings) != 0 {
		t.Errorf("silent input: silent=%v warnings=%v", report.Silent, report.Warnings)
	}
	if names := dirNames(t, filepath.Dir(cfg.OutputVideo)); len(names) != 1 || names[0] != "out.mp4" {
		t.Errorf("output dir = %v", names)
	}
}

func TestRunPassesCorruptFrameThrough(t *testing.T) {
	cfg := testConfig(t)
	raw := bytes.Repeat([]byte{9}, testFrame.Dx()*testFrame.Dy()*4)
	src := newFakeSource(10)
	src.corrupt = map[int][]byte{5: raw}
	enc := &fakeEncoder{}

	report, err := NewVideoProject(cfg, src, enc, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Recovered() != 1 || report.DecodeFailures[0] != 5 {
		t.Errorf("decode failures = %v", report.DecodeFailures)
	}
	if report.Composited != 9 {
		t.Errorf("composited = %d, want 9", report.Composited)
	}
	if !bytes.Equal(enc.writer.frames[5].Pix, raw) {
		t.Errorf("frame 5 is not the raw input")
	}
	// Neighbours are still composited.
	if fillCount(enc.writer.frames[6]) <= fillCount(enc.writer.frames[4]) {
		t.Errorf("fill did not continue after the failed frame")
	}
}

func TestRunAudio(t *testing.T) {
	tests := []struct {
		name       string
		remuxer    *fakeRemuxer
		wantSilent bool
		wantWarn   int
		wantBody   string
	}{
		{"reattached", &fakeRemuxer{}, false, 0, "video+audio"},
		{"remux fails", &fakeRemuxer{err: &video.AudioRemuxError{Err: errors.New("no aac")}}, true, 1, "video"},
		{"no remuxer", nil, true, 1, "video"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			src := newFakeSource(3)
			src.info.HasAudio = true

			var remuxer AudioRemuxer
			if tt.remuxer != nil {
				remuxer = tt.remuxer
			}
			report, err := NewVideoProject(cfg, src, &fakeEncoder{}, remuxer, nil).Run(context.Background())
			if err != nil {
				t.Fatalf("audio problems must not fail the run: %v", err)
			}
			if report.Silent != tt.wantSilent || len(report.Warnings) != tt.wantWarn {
				t.Errorf("silent=%v warnings=%v", report.Silent, report.Warnings)
			}
			body, err := os.ReadFile(cfg.OutputVideo)
			if err != nil {
				t.Fatal(err)
			}
			if string(body) != tt.wantBody {
				t.Errorf("output = %q, want %q", body, tt.wantBody)
			}
			if names := dirNames(t, filepath.Dir(cfg.OutputVideo)); len(names) != 1 {
				t.Errorf("leftover files: %v", names)
			}
		})
	}
}

func TestRunKeepAudioOff(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeepAudio = false
	src := newFakeSource(2)
	src.info.HasAudio = true
	remuxer := &fakeRemuxer{}

	report, err := NewVideoProject(cfg, src, &fakeEncoder{}, remuxer, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if remuxer.calls != 0 || !report.Silent || len(report.Warnings) != 0 {
		t.Errorf("calls=%d silent=%v warnings=%v", remuxer.calls, report.Silent, report.Warnings)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource(100)
	src.onNext = func(i int) {
		if i == 3 {
			cancel()
		}
	}
	enc := &fakeEncoder{}

	_, err := NewVideoProject(cfg, src, enc, nil, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if !enc.writer.aborted {
		t.Errorf("writer was not aborted")
	}
	if names := dirNames(t, filepath.Dir(cfg.OutputVideo)); len(names) != 0 {
		t.Errorf("files left behind: %v", names)
	}
}

func TestRunFatalErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, cfg *config.Config, src *fakeSource)
	}{
		{"invalid config", func(t *testing.T, cfg *config.Config, src *fakeSource) {
			cfg.BarHeight = 0
		}},
		{"frame too small", func(t *testing.T, cfg *config.Config, src *fakeSource) {
			src.info.Height = 20
		}},
		{"missing character", func(t *testing.T, cfg *config.Config, src *fakeSource) {
			cfg.CharacterPath = filepath.Join(t.TempDir(), "missing.gif")
		}},
		{"corrupt character", func(t *testing.T, cfg *config.Config, src *fakeSource) {
			path := filepath.Join(t.TempDir(), "bad.gif")
			if err := os.WriteFile(path, []byte("GIF89a not really"), 0644); err != nil {
				t.Fatal(err)
			}
			cfg.CharacterPath = path
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			src := newFakeSource(5)
			tt.mutate(t, cfg, src)
			enc := &fakeEncoder{}

			_, err := NewVideoProject(cfg, src, enc, nil, nil).Run(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !IsFatal(err) {
				t.Errorf("IsFatal(%v) = false", err)
			}
			if enc.opened != 0 {
				t.Errorf("encoder opened despite %v", err)
			}
			if _, statErr := os.Stat(cfg.OutputVideo); !os.IsNotExist(statErr) {
				t.Errorf("output exists after fatal error")
			}
		})
	}
}

func TestRunTailFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.TailFrames = 3
	enc := &fakeEncoder{}

	report, err := NewVideoProject(cfg, newFakeSource(4), enc, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.FramesRead != 4 || report.FramesWritten != 7 || report.TailFrames != 3 {
		t.Errorf("read=%d written=%d tail=%d", report.FramesRead, report.FramesWritten, report.TailFrames)
	}
	for i := 3; i < 7; i++ {
		if n := fillCount(enc.writer.frames[i]); n != 150 {
			t.Errorf("frame %d fill = %d, want full", i, n)
		}
	}
}

func TestPartialPath(t *testing.T) {
	tests := []struct {
		out, suffix, want string
	}{
		{"/tmp/out/video.mp4", "", "/tmp/out/.video.abc.partial.mp4"},
		{"/tmp/out/video.mov", ".audio", "/tmp/out/.video.abc.audio.partial.mov"},
		{"result", "", ".result.abc.partial.mp4"},
	}
	for _, tt := range tests {
		if got := partialPath(tt.out, "abc", tt.suffix); got != filepath.FromSlash(tt.want) {
			t.Errorf("partialPath(%q, %q) = %q, want %q", tt.out, tt.suffix, got, tt.want)
		}
	}
}

func TestReportOutput(t *testing.T) {
	r := &Report{
		Input:          "/videos/in.mp4",
		FramesWritten:  60,
		Composited:     59,
		DecodeFailures: []int{12},
		TotalTime:      2 * time.Second,
		PipelineTime:   1500 * time.Millisecond,
	}
	if r.FPS() != 30 {
		t.Errorf("FPS = %v", r.FPS())
	}
	perf := r.Performance("v1")
	for _, want := range []string{"PERFORMANCE REPORT", "Build: v1", "1 recovered", "Effective FPS: 30.00"} {
		if !strings.Contains(perf, want) {
			t.Errorf("performance block missing %q:\n%s", want, perf)
		}
	}
	line := r.BenchmarkLine("v1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	if !strings.HasPrefix(line, "[2024-05-01 12:00:00] Build: v1 | Input: in.mp4 | Frames: 60 | Recovered: 1") {
		t.Errorf("benchmark line = %q", line)
	}
}

func TestAppendLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark.log")
	for _, line := range []string{"first\n", "second\n"} {
		if err := appendLine(path, line); err != nil {
			t.Fatal(err)
		}
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "first\nsecond\n" {
		t.Errorf("log = %q", body)
	}

	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this system")
	}
	if err := appendLine("/dev/full", "lost\n"); err == nil {
		t.Errorf("write to a full device reported no error")
	}
}

func TestBenchmarkWriteFailureIsLogged(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this system")
	}
	cfg := testConfig(t)
	cfg.ShowStats = true
	var logs bytes.Buffer
	p := NewVideoProject(cfg, newFakeSource(2), &fakeEncoder{}, nil, logging.New(&logs, false))
	p.BenchmarkLog = "/dev/full"

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "could not write benchmark log") {
		t.Errorf("missing warning, log:\n%s", logs.String())
	}
}
