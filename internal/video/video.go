package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
)

// Params describe the encoded output stream.
type Params struct {
	Width   int
	Height  int
	FPS     float64
	Encoder string
	Quality int
}

// FrameWriter consumes composited frames in order. Close finalizes the
// file; Abort stops encoding and leaves whatever was written behind for the
// caller to delete.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
	Close() error
	Abort() error
}

// Encoder opens a FrameWriter for a new output file.
type Encoder interface {
	Open(ctx context.Context, path string, params Params) (FrameWriter, error)
}

type FFmpegEncoder struct{}

// Open starts an ffmpeg process reading rawvideo RGBA on stdin.
func (e *FFmpegEncoder) Open(ctx context.Context, path string, params Params) (FrameWriter, error) {
	args := e.buildFFmpegArgs(path, params)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out := &bytes.Buffer{}
	cmd.Stdout = out
	cmd.Stderr = out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &ffmpegWriter{cmd: cmd, stdin: stdin, out: out}, nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(path string, p Params) []string {
	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", strconv.FormatFloat(p.FPS, 'f', -1, 64),
		"-i", "-",
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	}

	// Quality depends on the encoder
	switch p.Encoder {
	case "h264_videotoolbox":
		// VideoToolbox does not take -q:v on every version; use a bitrate.
		bitrate := p.Quality * 100 // kbit/s, 75 -> 7.5 Mbit/s
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", p.Quality), "-preset", "medium")
	}

	args = append(args, path)
	return args
}

type ffmpegWriter struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bytes.Buffer
}

func (w *ffmpegWriter) WriteFrame(img *image.RGBA) error {
	if err := writeRawRGBA(w.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

func (w *ffmpegWriter) Close() error {
	w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, w.out.String())
	}
	return nil
}

func (w *ffmpegWriter) Abort() error {
	w.stdin.Close()
	if w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
	w.cmd.Wait()
	return nil
}

// writeRawRGBA writes img as tightly packed RGBA rows.
func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rectangle{Max: bounds.Size()})
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
