package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"ytarchive/config"
	"ytarchive/optimcache"
	"ytarchive/store"
	"ytarchive/transcode"
	"ytarchive/ytdlp"
)

// OptimizationCache is the remote content-addressable cache of
// already-encoded assets.
type OptimizationCache interface {
	HasUsable(ctx context.Context, key, encoderVersion string, useAnyVersion bool) bool
	Fetch(ctx context.Context, key, destPath string) error
	Put(ctx context.Context, key, srcPath, encoderVersion string) error
}

// OriginDownloader fetches assets from the origin platform.
type OriginDownloader interface {
	Download(ctx context.Context, videoID string, opts ytdlp.Options) error
}

// Transcoder normalizes downloaded assets to the run's target presets.
type Transcoder interface {
	PostProcessVideo(ctx context.Context, dir string, p transcode.Preset, forceReencode bool) error
	ProcessThumbnail(ctx context.Context, dir string, p transcode.Preset) error
}

// acquirer runs the per-video acquisition stages. One acquirer is shared
// by all workers; it holds no per-video mutable state, and workers never
// share a video id, so its use of the filesystem needs no locking.
type acquirer struct {
	cfg         *config.Config
	cache       OptimizationCache // nil when no cache is configured
	origin      OriginDownloader
	transcoder  Transcoder
	videoPreset transcode.Preset
	thumbPreset transcode.Preset
	store       *store.Store
	videosDir   string
	sink        Sink
	log         logrus.FieldLogger
}

func (a *acquirer) videoDir(id string) string {
	return filepath.Join(a.videosDir, id)
}

// acquire runs the three stages for one video. Thumbnail and subtitles
// are skipped when the video stage fails; a subtitle failure is logged
// but never fails the video.
func (a *acquirer) acquire(ctx context.Context, id string) error {
	dir := a.videoDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &AcquisitionError{VideoID: id, Stage: "setup", Err: err}
	}

	if err := a.acquireVideo(ctx, id, dir); err != nil {
		return &AcquisitionError{VideoID: id, Stage: "video", Err: err}
	}
	if err := a.acquireThumbnail(ctx, id, dir); err != nil {
		return &AcquisitionError{VideoID: id, Stage: "thumbnail", Err: err}
	}
	if err := a.acquireSubtitles(ctx, id, dir); err != nil {
		a.log.WithField("video", id).WithError(err).Warn("subtitles unavailable, continuing")
	}
	return a.handOff(id, dir)
}

func (a *acquirer) acquireVideo(ctx context.Context, id, dir string) error {
	dest := filepath.Join(dir, "video."+a.videoPreset.Ext)
	key := optimcache.VideoKey(a.cfg.VideoFormat, a.cfg.QualityTier(), id)

	if a.cache != nil && a.cache.HasUsable(ctx, key, a.videoPreset.VersionTag(), a.cfg.UseAnyOptimizedVersion) {
		return a.cache.Fetch(ctx, key, dest)
	}

	opts := ytdlp.Options{
		OutputTemplate:  filepath.Join(dir, "video.%(ext)s"),
		Format:          ytdlp.FormatSelector(a.cfg.VideoFormat),
		Retries:         20,
		FragmentRetries: 50,
	}
	if err := a.origin.Download(ctx, id, opts); err != nil {
		return err
	}
	// low quality always re-encodes; otherwise only a container mismatch does
	if err := a.transcoder.PostProcessVideo(ctx, dir, a.videoPreset, a.cfg.LowQuality); err != nil {
		return err
	}
	a.putBestEffort(ctx, key, dest, a.videoPreset.VersionTag())
	return nil
}

func (a *acquirer) acquireThumbnail(ctx context.Context, id, dir string) error {
	dest := filepath.Join(dir, "video."+a.thumbPreset.Ext)
	key := optimcache.ThumbnailKey(a.cfg.QualityTier(), id)

	if a.cache != nil && a.cache.HasUsable(ctx, key, a.thumbPreset.VersionTag(), a.cfg.UseAnyOptimizedVersion) {
		return a.cache.Fetch(ctx, key, dest)
	}

	opts := ytdlp.Options{
		OutputTemplate: filepath.Join(dir, "video.%(ext)s"),
		WriteThumbnail: true,
		SkipDownload:   true,
	}
	if err := a.origin.Download(ctx, id, opts); err != nil {
		return err
	}
	if err := a.transcoder.ProcessThumbnail(ctx, dir, a.thumbPreset); err != nil {
		return err
	}
	a.putBestEffort(ctx, key, dest, a.thumbPreset.VersionTag())
	return nil
}

func (a *acquirer) acquireSubtitles(ctx context.Context, id, dir string) error {
	opts := ytdlp.Options{
		OutputTemplate:     filepath.Join(dir, "video.%(ext)s"),
		WriteSubtitles:     true,
		AllSubtitles:       true,
		WriteAutoSubtitles: a.cfg.AllSubtitles,
		SubtitleFormat:     "vtt",
		SkipDownload:       true,
	}
	if err := a.origin.Download(ctx, id, opts); err != nil {
		return err
	}
	tracks := listSubtitleTracks(dir)
	return a.store.Save("subtitles_"+id, tracks)
}

// putBestEffort uploads a freshly produced asset to the cache; failure is
// logged, never fatal.
func (a *acquirer) putBestEffort(ctx context.Context, key, path, version string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Put(ctx, key, path, version); err != nil {
		a.log.WithField("key", key).WithError(err).Warn("cache upload failed")
	}
}

// handOff streams the acquired assets into the sink and removes the local
// copies, bounding disk usage while the run walks a large catalog.
func (a *acquirer) handOff(id, dir string) error {
	videoFile := "video." + a.videoPreset.Ext
	if err := a.sink.AddFile(
		assetPath(id, videoFile), filepath.Join(dir, videoFile),
		videoMimetype(a.cfg.VideoFormat), true,
	); err != nil {
		return &AcquisitionError{VideoID: id, Stage: "sink", Err: err}
	}
	thumbFile := "video." + a.thumbPreset.Ext
	if err := a.sink.AddFile(
		assetPath(id, thumbFile), filepath.Join(dir, thumbFile),
		"image/webp", true,
	); err != nil {
		return &AcquisitionError{VideoID: id, Stage: "sink", Err: err}
	}

	var tracks []Subtitle
	a.store.Load("subtitles_"+id, &tracks)
	for _, tr := range tracks {
		name := fmt.Sprintf("video.%s.vtt", tr.Code)
		if err := a.sink.AddFile(assetPath(id, name), filepath.Join(dir, name), "text/vtt", true); err != nil {
			return &AcquisitionError{VideoID: id, Stage: "sink", Err: err}
		}
	}
	return nil
}

func assetPath(id, name string) string {
	return "videos/" + id + "/" + name
}

func videoMimetype(format string) string {
	if format == "webm" {
		return "video/webm"
	}
	return "video/mp4"
}
