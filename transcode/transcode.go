package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Transcoder runs ffmpeg.
type Transcoder struct {
	path string
	log  logrus.FieldLogger
}

// New resolves the ffmpeg binary. path may be empty to search PATH.
func New(path string, log logrus.FieldLogger) (*Transcoder, error) {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("transcode: ffmpeg not found: %s", path)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Transcoder{path: resolved, log: log}, nil
}

// Reencode runs src through the preset, writing to dst.
func (t *Transcoder) Reencode(ctx context.Context, src, dst string, p Preset) error {
	args := append([]string{"-y", "-i", src}, p.Args...)
	args = append(args, dst)
	t.log.WithFields(logrus.Fields{"preset": p.Name, "src": src}).Debug("running ffmpeg")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("transcode: encode %s with %s: %w: %s",
			filepath.Base(src), p.Name, err, lastLine(stderr.Bytes()))
	}
	return nil
}

// PostProcessVideo locates the downloaded video file in dir and normalizes
// it to video.<ext> per the preset. A download already in the target
// container is renamed in place instead of re-encoded, unless reencode is
// forced. The source file is removed afterwards.
func (t *Transcoder) PostProcessVideo(ctx context.Context, dir string, p Preset, forceReencode bool) error {
	src, err := findVideoFile(dir)
	if err != nil {
		return err
	}
	dst := filepath.Join(dir, "video."+p.Ext)
	if src == dst {
		if !forceReencode {
			return nil
		}
		// encode to a sibling then swap so ffmpeg never reads its own output
		tmp := filepath.Join(dir, "video.tmp."+p.Ext)
		if err := t.Reencode(ctx, src, tmp, p); err != nil {
			return err
		}
		return os.Rename(tmp, dst)
	}
	if !forceReencode && strings.EqualFold(filepath.Ext(src), "."+p.Ext) {
		return os.Rename(src, dst)
	}
	if err := t.Reencode(ctx, src, dst, p); err != nil {
		return err
	}
	return os.Remove(src)
}

// ProcessThumbnail normalizes the downloaded thumbnail in dir to
// video.webp. yt-dlp writes thumbnails under the output template base
// name with the source extension (webp, jpg or png).
func (t *Transcoder) ProcessThumbnail(ctx context.Context, dir string, p Preset) error {
	src, err := findThumbnailFile(dir)
	if err != nil {
		return err
	}
	dst := filepath.Join(dir, "video."+p.Ext)
	if src == dst {
		return nil
	}
	if err := t.Reencode(ctx, src, dst, p); err != nil {
		return err
	}
	return os.Remove(src)
}

var videoExts = map[string]bool{
	".mp4": true, ".webm": true, ".mkv": true, ".m4v": true, ".avi": true,
}

var imageExts = map[string]bool{
	".webp": true, ".jpg": true, ".jpeg": true, ".png": true,
}

func findVideoFile(dir string) (string, error) {
	return findByExt(dir, videoExts, "video")
}

func findThumbnailFile(dir string) (string, error) {
	return findByExt(dir, imageExts, "thumbnail")
}

func findByExt(dir string, exts map[string]bool, kind string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("transcode: read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(e.Name()))] {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("transcode: no %s file in %s", kind, dir)
}

func lastLine(out []byte) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
