// Package scraper orchestrates the acquisition-and-assembly pipeline: it
// resolves the requested collection into playlists and videos, acquires
// every video's assets through a cache-first/origin-fallback strategy
// across a bounded worker pool, applies the abort threshold, and
// assembles the cross-referenced output documents for the archive sink.
package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ytarchive/config"
	"ytarchive/store"
	"ytarchive/transcode"
	"ytarchive/youtube"
)

const statsInterval = 10 * time.Second

// Catalog is the collection API surface the pipeline consumes,
// implemented by youtube.Client.
type Catalog interface {
	CredentialsOK(ctx context.Context) error
	ResolveCollection(ctx context.Context, typ config.CollectionType, id string) (*youtube.Collection, error)
	BuildVideoUniverse(ctx context.Context, playlists []*youtube.Playlist, dr config.DateRange) (*youtube.VideoUniverse, error)
	PlaylistItems(ctx context.Context, playlistID string) ([]youtube.PlaylistItem, error)
	VideoDetails(ctx context.Context, videoIDs []string) (map[string]youtube.VideoDetails, error)
	Channel(ctx context.Context, channelID string) (*youtube.ChannelInfo, error)
}

// CacheProber is implemented by caches that can verify their credentials
// up front.
type CacheProber interface {
	CredentialsOK(ctx context.Context) error
}

// Options wires a Scraper. Config, Catalog, Origin, Transcoder and Sink
// are mandatory; Cache is optional.
type Options struct {
	Config     *config.Config
	Catalog    Catalog
	Cache      OptimizationCache
	Origin     OriginDownloader
	Transcoder Transcoder
	Sink       Sink
	Logger     logrus.FieldLogger
}

// Scraper runs one archiving run end to end.
type Scraper struct {
	cfg        *config.Config
	catalog    Catalog
	cache      OptimizationCache
	origin     OriginDownloader
	transcoder Transcoder
	sink       Sink
	log        logrus.FieldLogger

	runID string
}

// New validates the wiring and returns a ready Scraper.
func New(opts Options) (*Scraper, error) {
	switch {
	case opts.Config == nil:
		return nil, fmt.Errorf("scraper: Config is required")
	case opts.Catalog == nil:
		return nil, fmt.Errorf("scraper: Catalog is required")
	case opts.Origin == nil:
		return nil, fmt.Errorf("scraper: Origin downloader is required")
	case opts.Transcoder == nil:
		return nil, fmt.Errorf("scraper: Transcoder is required")
	case opts.Sink == nil:
		return nil, fmt.Errorf("scraper: Sink is required")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scraper{
		cfg:        opts.Config,
		catalog:    opts.Catalog,
		cache:      opts.Cache,
		origin:     opts.Origin,
		transcoder: opts.Transcoder,
		sink:       opts.Sink,
		log:        log,
		runID:      uuid.NewString(),
	}, nil
}

// Run executes the pipeline. The build folder is removed best-effort on
// every exit path; the run either produces a complete, internally
// consistent output or fails with an error.
func (s *Scraper) Run(ctx context.Context) error {
	log := s.log.WithField("run", s.runID)
	log.WithFields(logrus.Fields{
		"collection": s.cfg.CollectionID,
		"type":       s.cfg.CollectionType,
	}).Info("starting run")

	buildDir, err := os.MkdirTemp(s.cfg.TmpDir, "ytarchive-build-")
	if err != nil {
		return fmt.Errorf("scraper: create build dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(buildDir); err != nil {
			log.WithError(err).Warn("could not remove build dir")
		}
	}()

	memo, err := store.New(filepath.Join(buildDir, "cache"))
	if err != nil {
		return err
	}
	videosDir := filepath.Join(buildDir, "videos")
	channelsDir := filepath.Join(buildDir, "channels")
	for _, dir := range []string{videosDir, channelsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("scraper: create %s: %w", dir, err)
		}
	}

	// fail fast on bad credentials before any real work
	if err := s.catalog.CredentialsOK(ctx); err != nil {
		return err
	}
	if prober, ok := s.cache.(CacheProber); ok && prober != nil {
		if err := prober.CredentialsOK(ctx); err != nil {
			return err
		}
	}

	coll, err := s.catalog.ResolveCollection(ctx, s.cfg.CollectionType, s.cfg.CollectionID)
	if err != nil {
		return err
	}
	log.WithField("playlists", len(coll.Playlists)).Info("collection resolved")

	universe, err := s.catalog.BuildVideoUniverse(ctx, coll.Playlists, s.cfg.DateRange())
	if err != nil {
		return err
	}
	log.WithField("videos", len(universe.Order)).Info("video universe built")

	acq := &acquirer{
		cfg:         s.cfg,
		cache:       s.cache,
		origin:      s.origin,
		transcoder:  s.transcoder,
		videoPreset: transcode.VideoPreset(s.cfg.VideoFormat, s.cfg.LowQuality),
		thumbPreset: transcode.ThumbnailPreset(),
		store:       memo,
		videosDir:   videosDir,
		sink:        s.sink,
		log:         log,
	}

	prog := newProgress(len(universe.Order), s.cfg.StatsPath, log)
	progCtx, stopProg := context.WithCancel(context.Background())
	go prog.watch(progCtx, statsInterval)
	succeeded, failed, err := s.runScheduler(ctx, universe.Order, acq, prog)
	stopProg()
	if err != nil {
		return err
	}
	if err := s.aggregate(succeeded, failed, acq); err != nil {
		return err
	}

	details, err := s.catalog.VideoDetails(ctx, succeeded)
	if err != nil {
		return err
	}
	channels := s.resolveChannels(ctx, coll, details)
	s.sinkAuthorBranding(ctx, channels, channelsDir)

	items := make(map[string][]youtube.PlaylistItem, len(coll.Playlists))
	for _, pl := range coll.Playlists {
		list, err := s.catalog.PlaylistItems(ctx, pl.ID)
		if err != nil {
			return err
		}
		items[pl.ID] = list
	}

	err = s.assemble(assembleInput{
		coll:      coll,
		universe:  universe,
		succeeded: succeeded,
		details:   details,
		channels:  channels,
		items:     items,
	}, acq)
	if err != nil {
		return err
	}

	log.WithField("videos", len(succeeded)).Info("run complete")
	return nil
}

// resolveChannels looks up every distinct author among the succeeded
// videos plus the collection's main channel. Lookups are memoized and
// idempotent; a failed lookup only orphans that author's videos.
func (s *Scraper) resolveChannels(ctx context.Context, coll *youtube.Collection, details map[string]youtube.VideoDetails) map[string]*youtube.ChannelInfo {
	ids := map[string]bool{}
	if coll.MainChannelID != "" {
		ids[coll.MainChannelID] = true
	}
	for _, det := range details {
		if det.ChannelID != "" {
			ids[det.ChannelID] = true
		}
	}
	channels := make(map[string]*youtube.ChannelInfo, len(ids))
	for id := range ids {
		ch, err := s.catalog.Channel(ctx, id)
		if err != nil {
			s.log.WithField("channel", id).WithError(err).Warn("channel lookup failed")
			continue
		}
		channels[id] = ch
	}
	return channels
}
