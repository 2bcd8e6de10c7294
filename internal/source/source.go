// Package source supplies decoded input frames in playback order.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"time"

	"github.com/yh284914425/video-progress/internal/system"
)

// Info describes an input stream. FrameCount may be an estimate for
// containers that do not store it.
type Info struct {
	Path       string
	Width      int
	Height     int
	FrameCount int
	FPS        float64
	Duration   time.Duration
	HasAudio   bool
}

// Rect returns the frame rectangle.
func (i Info) Rect() image.Rectangle {
	return image.Rect(0, 0, i.Width, i.Height)
}

// Frame is one decoded input frame. When decoding failed, Err is a
// *FrameDecodeError, Image is nil and Raw holds whatever bytes were read.
type Frame struct {
	Index int
	Image *image.RGBA
	Raw   []byte
	Err   error
}

// FrameDecodeError reports one input frame that could not be decoded.
// It does not stop the stream.
type FrameDecodeError struct {
	Index int
	Err   error
}

func (e *FrameDecodeError) Error() string {
	return fmt.Sprintf("decode frame %d: %v", e.Index, e.Err)
}

func (e *FrameDecodeError) Unwrap() error { return e.Err }

// Source yields frames with strictly increasing indices starting at 0.
// Next returns io.EOF after the last frame.
type Source interface {
	Info() Info
	Next(ctx context.Context) (*Frame, error)
	Close() error
}

// RawSource reads packed RGBA frames of a fixed size from a byte stream.
type RawSource struct {
	r     io.Reader
	info  Info
	pool  *system.ImagePool
	index int
	done  bool
}

// NewRawSource reads frames of info.Width x info.Height from r.
func NewRawSource(r io.Reader, info Info, pool *system.ImagePool) *RawSource {
	if pool == nil {
		pool = system.NewImagePool()
	}
	return &RawSource{r: r, info: info, pool: pool}
}

func (s *RawSource) Info() Info { return s.info }

// Next reads the next frame. A truncated final frame is returned as a
// decode failure carrying the partial bytes; the call after it returns io.EOF.
func (s *RawSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.done {
		return nil, io.EOF
	}

	img := s.pool.Get(s.info.Rect())
	n, err := io.ReadFull(s.r, img.Pix)
	idx := s.index
	switch {
	case err == nil:
		s.index++
		return &Frame{Index: idx, Image: img}, nil
	case errors.Is(err, io.EOF):
		s.done = true
		s.pool.Put(img)
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
		s.index++
		raw := make([]byte, n)
		copy(raw, img.Pix[:n])
		s.pool.Put(img)
		return &Frame{Index: idx, Raw: raw, Err: &FrameDecodeError{Index: idx, Err: err}}, nil
	default:
		s.pool.Put(img)
		return nil, fmt.Errorf("read frame %d: %w", idx, err)
	}
}

func (s *RawSource) Close() error { return nil }

// FFmpegSource decodes a video file with an ffmpeg subprocess that writes
// rawvideo RGBA to its stdout.
type FFmpegSource struct {
	*RawSource
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
}

// OpenFFmpeg starts decoding info.Path. The process is killed when ctx ends.
func OpenFFmpeg(ctx context.Context, info Info, pool *system.ImagePool) (*FFmpegSource, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", DecodeArgs(info.Path)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &FFmpegSource{
		RawSource: NewRawSource(stdout, info, pool),
		cmd:       cmd,
		stdout:    stdout,
		stderr:    stderr,
	}, nil
}

// DecodeArgs builds the ffmpeg arguments decoding path to packed RGBA.
func DecodeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	}
}

// Close stops the decoder. Exit errors are only reported once the whole
// stream was read; closing early always breaks the pipe.
func (s *FFmpegSource) Close() error {
	s.stdout.Close()
	err := s.cmd.Wait()
	if err != nil && s.done {
		return fmt.Errorf("ffmpeg decode error: %w, output: %s", err, s.stderr.String())
	}
	return nil
}
