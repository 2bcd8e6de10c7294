package video

import (
	"context"
	"fmt"
	"os/exec"
)

// AudioRemuxError reports that the audio track could not be reattached.
// Callers treat it as a warning: the video itself is intact.
type AudioRemuxError struct {
	Err error
}

func (e *AudioRemuxError) Error() string {
	return fmt.Sprintf("audio remux: %v", e.Err)
}

func (e *AudioRemuxError) Unwrap() error { return e.Err }

// FFmpegRemuxer copies the rendered video stream and the first audio stream
// of the source input into a new file.
type FFmpegRemuxer struct{}

func (FFmpegRemuxer) Remux(ctx context.Context, videoPath, audioSource, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", RemuxArgs(videoPath, audioSource, outPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &AudioRemuxError{Err: fmt.Errorf("ffmpeg remux error: %v, output: %s", err, string(out))}
	}
	return nil
}

// RemuxArgs builds the ffmpeg arguments for Remux.
func RemuxArgs(videoPath, audioSource, outPath string) []string {
	return []string{
		"-y",
		"-v", "error",
		"-i", videoPath,
		"-i", audioSource,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	}
}
