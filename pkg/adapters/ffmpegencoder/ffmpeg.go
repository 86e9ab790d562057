// Package ffmpegencoder streams raw RGBA frames through an ffmpeg process and
// delivers the encoded H.264 access units or VP8 frames as chunks.
package ffmpegencoder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// FindFFmpeg searches for ffmpeg.
// Priority: 1) custom path, 2) FFMPEG_PATH env, 3) PATH, 4) common locations
func FindFFmpeg(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	return lookTool("ffmpeg", ErrFFmpegNotFound)
}

// FindFFprobe looks for ffprobe next to ffmpeg, then in PATH and common locations.
func FindFFprobe(ffmpegPath string) (string, error) {
	if ffmpegPath != "" {
		sibling := filepath.Join(filepath.Dir(ffmpegPath), executable("ffprobe"))
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}
	return lookTool("ffprobe", ErrFFprobeNotFound)
}

func lookTool(name string, notFound error) (string, error) {
	execName := executable(name)
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var dirs []string
	switch runtime.GOOS {
	case "windows":
		dirs = []string{`C:\ffmpeg\bin`, `C:\Program Files\ffmpeg\bin`, `C:\Program Files (x86)\ffmpeg\bin`}
	case "darwin":
		dirs = []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}
	default:
		dirs = []string{"/usr/bin", "/usr/local/bin", "/opt/homebrew/bin", "/snap/bin"}
	}

	for _, dir := range dirs {
		p := filepath.Join(dir, execName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", notFound
}

func executable(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
