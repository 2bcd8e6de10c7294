package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/logging"
	"github.com/yh284914425/video-progress/internal/source"
	"github.com/yh284914425/video-progress/internal/sprite"
	"github.com/yh284914425/video-progress/internal/system"
	"github.com/yh284914425/video-progress/internal/video"
)

// AudioRemuxer reattaches the audio of audioSource to videoPath, writing
// outPath. It is optional: without it, or when it fails, the output is
// silent and the run still succeeds.
type AudioRemuxer interface {
	Remux(ctx context.Context, videoPath, audioSource, outPath string) error
}

// VideoProject runs one input video through decode, composite and encode.
type VideoProject struct {
	Config  *config.Config
	Source  source.Source
	Encoder video.Encoder
	Remuxer AudioRemuxer
	Logger  *log.Logger
	Pool    *system.ImagePool

	// Sprite overrides loading Config.CharacterPath.
	Sprite *sprite.Sprite
	// OnProgress is called from the encoding goroutine after every written frame.
	OnProgress func(written, total int)
	// BenchmarkLog receives one line per run when ShowStats is set.
	BenchmarkLog string
}

func NewVideoProject(cfg *config.Config, src source.Source, enc video.Encoder, remuxer AudioRemuxer, logger *log.Logger) *VideoProject {
	if logger == nil {
		logger = logging.Discard()
	}
	return &VideoProject{
		Config:       cfg,
		Source:       src,
		Encoder:      enc,
		Remuxer:      remuxer,
		Logger:       logger,
		Pool:         system.NewImagePool(),
		BenchmarkLog: "benchmark.log",
	}
}

// Run renders the whole input into Config.OutputVideo. Configuration and
// asset errors are returned before the output is created; any error during
// streaming removes the partially written file.
func (p *VideoProject) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	cfg := p.Config
	info := p.Source.Info()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateFrame(info.Width, info.Height); err != nil {
		return nil, err
	}
	spr, err := p.loadSprite()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Input:  info.Path,
		Output: cfg.OutputVideo,
		RunID:  uuid.NewString(),
	}
	comp := NewCompositor(&cfg.RenderConfig, spr, info.Rect(), p.Pool)

	if err := os.MkdirAll(filepath.Dir(cfg.OutputVideo), 0755); err != nil {
		return nil, err
	}
	partial := partialPath(cfg.OutputVideo, report.RunID, "")

	encoder := cfg.VideoEncoder
	if encoder == "" {
		encoder = "libx264"
	}
	quality := cfg.Quality
	if quality == 0 {
		quality = system.DefaultQuality(encoder)
	}

	p.Logger.Info("[*] source", "path", info.Path, "size", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"fps", fmt.Sprintf("%.2f", info.FPS), "frames", info.FrameCount)
	p.Logger.Debug("[*] encoder", "name", encoder, "quality", quality, "partial", partial)

	writer, err := p.Encoder.Open(ctx, partial, video.Params{
		Width:   info.Width,
		Height:  info.Height,
		FPS:     info.FPS,
		Encoder: encoder,
		Quality: quality,
	})
	if err != nil {
		os.Remove(partial)
		return nil, fmt.Errorf("open encoder: %w", err)
	}

	pipelineStart := time.Now()
	if err := p.stream(ctx, comp, writer, info, report); err != nil {
		writer.Abort()
		os.Remove(partial)
		return nil, err
	}
	if err := writer.Close(); err != nil {
		os.Remove(partial)
		return nil, fmt.Errorf("finalize video: %w", err)
	}
	report.PipelineTime = time.Since(pipelineStart)
	report.Composited, report.TailFrames, report.DecodeFailures = comp.Stats()
	for _, idx := range report.DecodeFailures {
		p.Logger.Warn("[!] frame could not be decoded, passed through", "index", idx)
	}

	remuxStart := time.Now()
	partial = p.attachAudio(ctx, partial, info, report)
	report.RemuxTime = time.Since(remuxStart)

	if err := os.Rename(partial, cfg.OutputVideo); err != nil {
		os.Remove(partial)
		return nil, fmt.Errorf("move output into place: %w", err)
	}

	report.TotalTime = time.Since(startTime)
	report.BuffersAllocated = p.Pool.Allocated()
	if cfg.ShowStats {
		p.writeStats(report)
	}
	p.Logger.Info("[+++] done", "output", cfg.OutputVideo, "frames", report.FramesWritten,
		"recovered", report.Recovered(), "silent", report.Silent)
	return report, nil
}

// stream pipelines decode, composite and encode. Each stage is a single
// goroutine and the channels are FIFO, so frames reach the compositor and
// the encoder in index order.
func (p *VideoProject) stream(ctx context.Context, comp *Compositor, writer video.FrameWriter, info source.Info, report *Report) error {
	depth := max(p.Config.QueueDepth, 1)
	decoded := make(chan *source.Frame, depth)
	composited := make(chan *image.RGBA, depth)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(decoded)
		for {
			f, err := p.Source.Next(gctx)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			report.FramesRead++
			select {
			case decoded <- f:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		defer close(composited)
		send := func(img *image.RGBA) error {
			select {
			case composited <- img:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		for f := range decoded {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := comp.Process(f, info.FrameCount)
			if err != nil {
				return err
			}
			if err := send(img); err != nil {
				return err
			}
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		return comp.Drain(send)
	})

	g.Go(func() error {
		total := info.FrameCount + p.Config.TailFrames
		for img := range composited {
			if err := writer.WriteFrame(img); err != nil {
				return fmt.Errorf("encode frame %d: %w", report.FramesWritten, err)
			}
			p.Pool.Put(img)
			report.FramesWritten++
			if p.OnProgress != nil {
				p.OnProgress(report.FramesWritten, total)
			}
		}
		return nil
	})

	return g.Wait()
}

// attachAudio remuxes the input's audio into the rendered video and returns
// the path now holding the result. Failures only add a warning.
func (p *VideoProject) attachAudio(ctx context.Context, partial string, info source.Info, report *Report) string {
	switch {
	case !p.Config.KeepAudio || !info.HasAudio:
		report.Silent = true
		return partial
	case p.Remuxer == nil:
		report.Silent = true
		report.warn("no audio remuxer available, output is silent")
		p.Logger.Warn("[!] " + report.Warnings[len(report.Warnings)-1])
		return partial
	}

	withAudio := partialPath(p.Config.OutputVideo, report.RunID, ".audio")
	if err := p.Remuxer.Remux(ctx, partial, info.Path, withAudio); err != nil {
		os.Remove(withAudio)
		report.Silent = true
		report.warn("audio could not be reattached, output is silent: %v", err)
		p.Logger.Warn("[!] audio remux failed, output is silent", "err", err)
		return partial
	}
	os.Remove(partial)
	return withAudio
}

func (p *VideoProject) loadSprite() (*sprite.Sprite, error) {
	if p.Sprite != nil {
		return p.Sprite, nil
	}
	r := &p.Config.RenderConfig
	if r.CharacterPath == "" {
		return sprite.Default(r.CharacterSize.Point(), r.BarColor.RGBA()), nil
	}
	spr, err := sprite.Load(r.CharacterPath, r.CharacterSize.Point())
	if err != nil {
		return nil, err
	}
	p.Logger.Debug("[*] character loaded", "path", r.CharacterPath, "frames", spr.Len())
	return spr, nil
}

func (p *VideoProject) writeStats(report *Report) {
	if st, err := system.Snapshot(); err == nil {
		report.Resources = &st
	}
	fmt.Fprint(os.Stderr, report.Performance(p.Config.BuildVersion))

	if p.BenchmarkLog == "" {
		return
	}
	line := report.BenchmarkLine(p.Config.BuildVersion, time.Now())
	if err := appendLine(p.BenchmarkLog, line); err != nil {
		p.Logger.Warn("[!] could not write benchmark log", "path", p.BenchmarkLog, "err", err)
	}
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// partialPath names the temporary file next to out that a run writes
// before it is complete.
func partialPath(out, runID, suffix string) string {
	ext := filepath.Ext(out)
	if ext == "" {
		ext = ".mp4"
	}
	base := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	return filepath.Join(filepath.Dir(out), fmt.Sprintf(".%s.%s%s.partial%s", base, runID, suffix, ext))
}

// IsFatal reports whether err stops a run before any frame is written.
func IsFatal(err error) bool {
	var ae *sprite.AssetLoadError
	return errors.Is(err, config.ErrInvalidConfig) || errors.As(err, &ae)
}
