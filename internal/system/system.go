package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

// VideoExtensions are the container formats picked up from the input folder.
var VideoExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".m4v"}

// InitResourceLimits raises the open file limit; every run spawns ffmpeg
// processes with several pipes each.
func InitResourceLimits(logger *log.Logger) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("[!] could not read the open file limit", "err", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("[!] could not raise the open file limit", "err", err)
	} else {
		logger.Debug("[*] open file limit raised", "limit", rLimit.Cur)
	}
}

// FindLatestVideo returns the most recently modified video file in dir.
func FindLatestVideo(dir string) (string, error) {
	return findLatest(dir, VideoExtensions, "video")
}

// FindLatestImage returns the most recently modified PNG, JPEG or GIF in
// path, or in the directory of path when it names a file.
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	dir := path
	if !fi.IsDir() {
		dir = filepath.Dir(path)
	}
	return findLatest(dir, []string{".jpg", ".jpeg", ".png", ".gif"}, "image")
}

func findLatest(dir string, extensions []string, kind string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if !slices.Contains(extensions, strings.ToLower(filepath.Ext(f.Name()))) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", kind, dir)
	}
	return latestFile, nil
}

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg offers one.
// Priority: VideoToolbox (macOS), NVENC (NVIDIA), then libx264.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality is the quality value used when none is configured.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = Q*100 kbit/s
	case "h264_nvenc":
		return 28
	default:
		return 23 // x264 CRF
	}
}
