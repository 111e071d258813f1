// Package ytdlp shells out to the yt-dlp binary to fetch videos,
// thumbnails and subtitle tracks from the origin platform.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

const watchURL = "https://www.youtube.com/watch?v=%s"

// ErrNotInstalled is returned when the yt-dlp binary cannot be found.
var ErrNotInstalled = errors.New("ytdlp: binary not found in PATH")

// Options controls a single yt-dlp invocation.
type Options struct {
	// OutputTemplate is the -o value, e.g. "/tmp/run/videos/ID/video.%(ext)s".
	OutputTemplate string
	// Format is the -f selector. Empty means yt-dlp's default.
	Format string

	WriteThumbnail     bool
	WriteSubtitles     bool
	AllSubtitles       bool
	WriteAutoSubtitles bool
	SubtitleFormat     string
	SkipDownload       bool

	Retries         int
	FragmentRetries int
}

func (o Options) args(videoID string) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
	}
	if o.Retries > 0 {
		args = append(args, "--retries", fmt.Sprint(o.Retries))
	}
	if o.FragmentRetries > 0 {
		args = append(args, "--fragment-retries", fmt.Sprint(o.FragmentRetries))
	}
	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	if o.WriteThumbnail {
		args = append(args, "--write-thumbnail")
	}
	if o.WriteSubtitles {
		args = append(args, "--write-subs")
		if o.AllSubtitles {
			args = append(args, "--sub-langs", "all")
		}
	}
	if o.WriteAutoSubtitles {
		args = append(args, "--write-auto-subs")
	}
	if o.SubtitleFormat != "" {
		args = append(args, "--sub-format", o.SubtitleFormat)
	}
	if o.SkipDownload {
		args = append(args, "--skip-download")
	}
	if o.OutputTemplate != "" {
		args = append(args, "-o", o.OutputTemplate)
	}
	args = append(args, fmt.Sprintf(watchURL, videoID))
	return args
}

// FormatSelector builds a -f selector preferring a single pre-muxed file in
// the wanted container, falling back to merging separate streams.
func FormatSelector(format string) string {
	switch format {
	case "webm":
		return "best[ext=webm]/bestvideo[ext=webm]+bestaudio[ext=webm]/best"
	default:
		return "best[ext=mp4]/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best"
	}
}

// Downloader runs yt-dlp against single video ids.
type Downloader struct {
	path    string
	log     logrus.FieldLogger
	timeout time.Duration
}

// NewDownloader resolves the yt-dlp binary. path may be empty to search PATH.
func NewDownloader(path string, log logrus.FieldLogger, timeout time.Duration) (*Downloader, error) {
	if path == "" {
		path = "yt-dlp"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, path)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if timeout == 0 {
		timeout = 30 * time.Minute
	}
	return &Downloader{path: resolved, log: log, timeout: timeout}, nil
}

// Download runs one yt-dlp invocation for videoID with the given options.
func (d *Downloader) Download(ctx context.Context, videoID string, opts Options) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	args := opts.args(videoID)
	d.log.WithFields(logrus.Fields{"video": videoID, "args": args}).Debug("running yt-dlp")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ytdlp: download %s: %w: %s", videoID, err, lastLine(stderr.Bytes()))
	}
	return nil
}

// lastLine extracts the final non-empty stderr line, which is where yt-dlp
// puts its actual error message.
func lastLine(out []byte) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
