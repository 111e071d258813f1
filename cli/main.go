package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"ytarchive/config"
	"ytarchive/optimcache"
	"ytarchive/retry"
	"ytarchive/scraper"
	"ytarchive/store"
	"ytarchive/transcode"
	"ytarchive/youtube"
	"ytarchive/ytdlp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("ytarchive", flag.ExitOnError)
	collectionType := fs.String("type", string(cfg.CollectionType), "Collection type: channel, user or playlist")
	collectionID := fs.String("id", cfg.CollectionID, "Channel id/handle, user name, or comma-separated playlist ids")
	apiKey := fs.String("api-key", cfg.APIKey, "YouTube Data API v3 key")
	name := fs.String("name", cfg.Name, "Archive identifier")
	format := fs.String("format", cfg.VideoFormat, "Target video format: mp4 or webm")
	lowQuality := fs.Bool("low-quality", cfg.LowQuality, "Use low-bitrate encoding presets")
	allSubtitles := fs.Bool("all-subtitles", cfg.AllSubtitles, "Also fetch auto-generated subtitles")
	concurrency := fs.Int("concurrency", cfg.Concurrency, "Number of parallel acquisition workers")
	dateAfter := fs.String("date-after", cfg.DateAfter, "Keep only videos published on/after YYYYMMDD")
	cacheURL := fs.String("cache-url", cfg.CacheURL, "S3 URL of the optimization cache")
	useAnyVersion := fs.Bool("use-any-optimized-version", cfg.UseAnyOptimizedVersion, "Accept cached assets of any encoder version")
	outputDir := fs.String("output", cfg.OutputDir, "Output directory")
	tmpDir := fs.String("tmp-dir", cfg.TmpDir, "Build folder location")
	statsPath := fs.String("stats-path", cfg.StatsPath, "Progress stats JSON path")
	title := fs.String("title", cfg.Title, "Override the archive title")
	description := fs.String("description", cfg.Description, "Override the archive description")
	creator := fs.String("creator", cfg.CreatorName, "Override the creator name")
	debug := fs.Bool("debug", cfg.Debug, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ytarchive - turn a YouTube collection into an offline archive

Usage:
  ytarchive --type channel --id UCxxxxx --api-key KEY --name my-archive [flags]

Flags:
`)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	cfg.CollectionType = config.CollectionType(*collectionType)
	cfg.CollectionID = *collectionID
	cfg.APIKey = *apiKey
	cfg.Name = *name
	cfg.VideoFormat = *format
	cfg.LowQuality = *lowQuality
	cfg.AllSubtitles = *allSubtitles
	cfg.Concurrency = *concurrency
	cfg.DateAfter = *dateAfter
	cfg.CacheURL = *cacheURL
	cfg.UseAnyOptimizedVersion = *useAnyVersion
	cfg.OutputDir = *outputDir
	cfg.TmpDir = *tmpDir
	cfg.StatsPath = *statsPath
	cfg.Title = *title
	cfg.Description = *description
	cfg.CreatorName = *creator
	cfg.Debug = *debug

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log := logrus.New()
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("interrupted, cleaned up")
		} else if cfg.Debug {
			log.WithError(err).Error("run failed")
		} else {
			log.Errorf("run failed: %v", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	memoDir, err := os.MkdirTemp(cfg.TmpDir, "ytarchive-catalog-")
	if err != nil {
		return fmt.Errorf("create catalog cache dir: %w", err)
	}
	defer os.RemoveAll(memoDir)
	memo, err := store.New(memoDir)
	if err != nil {
		return err
	}

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.CatalogRetries
	catalog, err := youtube.NewClient(ctx, youtube.ClientOptions{
		APIKey:  cfg.APIKey,
		Store:   memo,
		Logger:  log,
		Retry:   policy,
		Timeout: cfg.APITimeout,
	})
	if err != nil {
		return err
	}

	var cache scraper.OptimizationCache
	if cfg.CacheURL != "" {
		c, err := optimcache.New(cfg.CacheURL, log, cfg.APITimeout)
		if err != nil {
			return err
		}
		cache = c
	}

	origin, err := ytdlp.NewDownloader(cfg.YtdlpPath, log, 0)
	if err != nil {
		return err
	}
	transcoder, err := transcode.New(cfg.FFmpegPath, log)
	if err != nil {
		return err
	}
	sink, err := scraper.NewDirSink(cfg.OutputDir)
	if err != nil {
		return err
	}

	s, err := scraper.New(scraper.Options{
		Config:     cfg,
		Catalog:    catalog,
		Cache:      cache,
		Origin:     origin,
		Transcoder: transcoder,
		Sink:       sink,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
