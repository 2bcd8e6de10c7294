package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yh284914425/video-progress/internal/system"
)

// Report summarizes a finished run. Recoverable problems end up here
// instead of failing the run.
type Report struct {
	Input  string
	Output string
	RunID  string

	FramesRead     int
	FramesWritten  int
	Composited     int
	TailFrames     int
	DecodeFailures []int

	// Silent is set when the output carries no audio track.
	Silent   bool
	Warnings []string

	TotalTime    time.Duration
	PipelineTime time.Duration
	RemuxTime    time.Duration

	BuffersAllocated int64
	Resources        *system.ResourceStats
}

// Recovered is the number of input frames passed through undecoded.
func (r *Report) Recovered() int { return len(r.DecodeFailures) }

// FPS is the effective processing speed over the whole run.
func (r *Report) FPS() float64 {
	if r.TotalTime <= 0 {
		return 0
	}
	return float64(r.FramesWritten) / r.TotalTime.Seconds()
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Performance renders the end-of-run performance block.
func (r *Report) Performance(build string) string {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", build)
	fmt.Fprintf(&b, "Total Time: %.2fs\n", r.TotalTime.Seconds())
	fmt.Fprintf(&b, "Pipeline (decode+composite+encode): %.2fs\n", r.PipelineTime.Seconds())
	fmt.Fprintf(&b, "Audio Remux: %.2fs\n", r.RemuxTime.Seconds())
	fmt.Fprintf(&b, "Frames: %d written, %d composited, %d recovered, %d tail\n",
		r.FramesWritten, r.Composited, r.Recovered(), r.TailFrames)
	fmt.Fprintf(&b, "Effective FPS: %.2f\n", r.FPS())
	fmt.Fprintf(&b, "Frame buffers allocated: %d\n", r.BuffersAllocated)
	if r.Resources != nil {
		fmt.Fprintf(&b, "%s\n", r.Resources)
	}
	b.WriteString("----------------------------\n")
	return b.String()
}

// BenchmarkLine is the one-line entry appended to benchmark.log.
func (r *Report) BenchmarkLine(build string, now time.Time) string {
	return fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Recovered: %d | Total: %.2fs | Pipeline: %.2fs | FPS: %.2f\n",
		now.Format("2006-01-02 15:04:05"),
		build,
		filepath.Base(r.Input),
		r.FramesWritten,
		r.Recovered(),
		r.TotalTime.Seconds(),
		r.PipelineTime.Seconds(),
		r.FPS(),
	)
}
