package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/engine"
	"github.com/yh284914425/video-progress/internal/logging"
	"github.com/yh284914425/video-progress/internal/source"
	"github.com/yh284914425/video-progress/internal/system"
	"github.com/yh284914425/video-progress/internal/video"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[-] "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "videoprogress [input]",
		Short: "Overlay an animated progress bar on a video",
		Long: `Renders a progress bar with an animated character riding its fill edge
onto every frame of a video, or of a directory of PNG/JPEG frames.
Without an input the newest video in input/video/ is used, and ./config.json
is loaded when present.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, cmd.Flags().Changed)
		},
	}

	f := root.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output video (default: output/<input>_progress_<time>.mp4)")
	f.StringVar(&opts.configPath, "config", "", "config file (.yaml, .json or .toml)")
	f.StringVar(&opts.preset, "preset", "", fmt.Sprintf("style preset: %v", config.PresetNames()))
	f.StringVar(&opts.character, "character", "", "character image or animated GIF")
	f.IntSliceVar(&opts.size, "size", nil, "character size W,H")
	f.StringVar(&opts.position, "position", config.PositionBottom, "bar position: top or bottom")
	f.IntSliceVar(&opts.color, "color", nil, "bar color R,G,B")
	f.IntSliceVar(&opts.offset, "offset", nil, "character offset X,Y")
	f.BoolVar(&opts.noEffects, "no-effects", false, "disable bounce, lightning and particles")
	f.Int64Var(&opts.seed, "seed", 0, "random seed for particles and lightning (0: time based)")
	f.IntVarP(&opts.quality, "quality", "q", 0, "encoder quality (0: encoder default)")
	f.BoolVar(&opts.stats, "stats", false, "print a performance report and append to benchmark.log")
	f.BoolVar(&opts.noAudio, "no-audio", false, "do not copy the input's audio")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newInitConfigCmd())
	return root
}

func newInitConfigCmd() *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the default configuration to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.ApplyPreset(preset); err != nil {
				return err
			}
			if err := config.Save(cfg, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("[+++] config written to "+args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "style preset to apply before writing")
	return cmd
}

func run(ctx context.Context, opts *options, args []string, changed func(string) bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, opts.verbose)
	system.InitResourceLimits(logger)

	for _, d := range []string{defaultInputDir, defaultOutDir} {
		os.MkdirAll(d, 0755)
	}

	cfg, err := opts.resolve(changed)
	if err != nil {
		return err
	}
	cfg.BuildVersion = version
	if cfg.CharacterPath == "" {
		if p, err := system.FindLatestImage(characterDir); err == nil {
			cfg.CharacterPath = p
			logger.Info("[*] character selected", "path", p)
		}
	}

	input, err := resolveInput(args, cfg)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		logger.Info("[*] input selected", "path", input)
	}
	if cfg.OutputVideo == "" {
		cfg.OutputVideo = defaultOutput(input, time.Now())
	}
	if cfg.VideoEncoder == "" {
		cfg.VideoEncoder = system.GetBestH264Encoder()
		if cfg.VideoEncoder != "libx264" {
			logger.Info("[*] hardware encoder detected", "encoder", cfg.VideoEncoder)
		}
	}
	// Fail on configuration before spawning any process.
	if err := cfg.Validate(); err != nil {
		return err
	}

	pool := system.NewImagePool()
	src, err := openSource(ctx, input, cfg, pool, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	project := engine.NewVideoProject(cfg, src, &video.FFmpegEncoder{}, video.FFmpegRemuxer{}, logger)
	project.Pool = pool

	view := newProgressView(os.Stderr)
	project.OnProgress = view.Update
	view.Start()
	report, err := project.Run(ctx)
	view.Stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted, partial output removed")
		}
		return err
	}

	for _, w := range report.Warnings {
		fmt.Fprintln(os.Stderr, warnStyle.Render("[!] "+w))
	}
	fmt.Println(successStyle.Render("[+++] done: " + report.Output))
	return nil
}

// openSource decodes a directory as an image sequence and anything else
// through ffmpeg.
func openSource(ctx context.Context, input string, cfg *config.Config, pool *system.ImagePool, logger *log.Logger) (source.Source, error) {
	st, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return source.NewImageSequenceSource(input, cfg.SequenceFPS, pool)
	}

	info, err := video.Probe(ctx, input)
	if err != nil {
		return nil, err
	}
	logger.Debug("[*] probed", "path", input, "frames", info.FrameCount, "audio", info.HasAudio)
	return source.OpenFFmpeg(ctx, info, pool)
}
