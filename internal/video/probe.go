package video

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/yh284914425/video-progress/internal/source"
)

// Probe reads stream information of path with ffprobe.
func Probe(ctx context.Context, path string) (source.Info, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_streams", "-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return source.Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return ParseProbe(out, path)
}

// ParseProbe extracts the first video stream and audio presence from
// ffprobe's JSON output.
func ParseProbe(data []byte, path string) (source.Info, error) {
	if !gjson.ValidBytes(data) {
		return source.Info{}, fmt.Errorf("ffprobe %s: invalid JSON", path)
	}
	doc := gjson.ParseBytes(data)
	v := doc.Get(`streams.#(codec_type=="video")`)
	if !v.Exists() {
		return source.Info{}, fmt.Errorf("ffprobe %s: no video stream", path)
	}

	info := source.Info{
		Path:     path,
		Width:    int(v.Get("width").Int()),
		Height:   int(v.Get("height").Int()),
		HasAudio: doc.Get(`streams.#(codec_type=="audio")`).Exists(),
	}
	if info.Width <= 0 || info.Height <= 0 {
		return source.Info{}, fmt.Errorf("ffprobe %s: invalid frame size %dx%d", path, info.Width, info.Height)
	}

	info.FPS = parseRate(v.Get("avg_frame_rate").String())
	if info.FPS <= 0 {
		info.FPS = parseRate(v.Get("r_frame_rate").String())
	}
	if info.FPS <= 0 {
		info.FPS = 30
	}

	secs := v.Get("duration").Float()
	if secs <= 0 {
		secs = doc.Get("format.duration").Float()
	}
	info.Duration = time.Duration(math.Round(secs*1000)) * time.Millisecond

	info.FrameCount = int(v.Get("nb_frames").Int())
	if info.FrameCount <= 0 {
		info.FrameCount = int(math.Round(secs * info.FPS))
	}
	return info, nil
}

// parseRate parses ffprobe rates such as "30000/1001" or "25".
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
