package source

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/yh284914425/video-progress/internal/system"
)

// ImageSequenceSource treats a directory of PNG/JPEG files, sorted by name,
// as the frames of a video. The first image fixes the frame size.
type ImageSequenceSource struct {
	paths []string
	info  Info
	pool  *system.ImagePool
	next  int
}

func NewImageSequenceSource(path string, fps float64, pool *system.ImagePool) (*ImageSequenceSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
					paths = append(paths, filepath.Join(path, entry.Name()))
				}
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}

	w, h, err := dimensions(paths[0])
	if err != nil {
		return nil, fmt.Errorf("read first image: %w", err)
	}
	if pool == nil {
		pool = system.NewImagePool()
	}
	if fps <= 0 {
		fps = 30
	}
	return &ImageSequenceSource{
		paths: paths,
		pool:  pool,
		info: Info{
			Path:       path,
			Width:      w,
			Height:     h,
			FrameCount: len(paths),
			FPS:        fps,
			Duration:   time.Duration(float64(len(paths)) / fps * float64(time.Second)),
		},
	}, nil
}

func (s *ImageSequenceSource) Info() Info { return s.info }

// Next decodes the next image. Unreadable images and images whose size
// differs from the first are reported as decode failures.
func (s *ImageSequenceSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	idx := s.next
	s.next++

	img, err := decode(s.paths[idx])
	if err != nil {
		return &Frame{Index: idx, Err: &FrameDecodeError{Index: idx, Err: err}}, nil
	}
	if img.Bounds().Size() != s.info.Rect().Size() {
		err := fmt.Errorf("size %v differs from %dx%d", img.Bounds().Size(), s.info.Width, s.info.Height)
		return &Frame{Index: idx, Err: &FrameDecodeError{Index: idx, Err: err}}, nil
	}

	dst := s.pool.Get(s.info.Rect())
	draw.Draw(dst, dst.Rect, img, img.Bounds().Min, draw.Src)
	return &Frame{Index: idx, Image: dst}, nil
}

func (s *ImageSequenceSource) Close() error {
	return nil
}

func dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
