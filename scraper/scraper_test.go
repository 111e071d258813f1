package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytarchive/config"
	"ytarchive/transcode"
	"ytarchive/ytdlp"
	"ytarchive/youtube"
)

// memSink records everything handed to it without touching the filesystem.
type memSink struct {
	mu    sync.Mutex
	items map[string][]byte
	files map[string]string
}

func newMemSink() *memSink {
	return &memSink{items: map[string][]byte{}, files: map[string]string{}}
}

func (m *memSink) AddItem(path string, content []byte, mimetype string, isFront bool, index *IndexData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[path] = content
	return nil
}

func (m *memSink) AddFile(path, filePath, mimetype string, deleteAfter bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = filePath
	return nil
}

func (m *memSink) item(t *testing.T, path string, v any) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[path]
	require.True(t, ok, "sink item %s missing, have %v", path, itemPaths(m.items))
	require.NoError(t, json.Unmarshal(data, v))
}

func itemPaths(items map[string][]byte) []string {
	var out []string
	for p := range items {
		out = append(out, p)
	}
	return out
}

type originCall struct {
	videoID string
	opts    ytdlp.Options
}

// fakeOrigin records downloads and can fail or panic per video id.
type fakeOrigin struct {
	mu        sync.Mutex
	calls     []originCall
	failVideo map[string]bool
	panicOn   string
}

func (f *fakeOrigin) Download(ctx context.Context, videoID string, opts ytdlp.Options) error {
	f.mu.Lock()
	f.calls = append(f.calls, originCall{videoID: videoID, opts: opts})
	f.mu.Unlock()
	if videoID == f.panicOn {
		panic("origin fault")
	}
	if f.failVideo[videoID] && !opts.SkipDownload {
		return fmt.Errorf("origin says no for %s", videoID)
	}
	return nil
}

func (f *fakeOrigin) videoDownloads(videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.videoID == videoID && !c.opts.SkipDownload {
			n++
		}
	}
	return n
}

// fakeTranscoder accepts everything without running ffmpeg.
type fakeTranscoder struct{}

func (fakeTranscoder) PostProcessVideo(ctx context.Context, dir string, p transcode.Preset, force bool) error {
	return nil
}

func (fakeTranscoder) ProcessThumbnail(ctx context.Context, dir string, p transcode.Preset) error {
	return nil
}

// fakeCache serves HasUsable from a canned key set and records traffic.
type fakeCache struct {
	mu       sync.Mutex
	usable   map[string]bool
	versions map[string]string // stored version per key, checked like the real client
	fetched  []string
	put      []string
}

func (f *fakeCache) HasUsable(ctx context.Context, key, encoderVersion string, useAnyVersion bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.versions != nil {
		stored, ok := f.versions[key]
		if !ok {
			return false
		}
		return useAnyVersion || stored == encoderVersion
	}
	return f.usable[key]
}

func (f *fakeCache) Fetch(ctx context.Context, key, destPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, key)
	return nil
}

func (f *fakeCache) Put(ctx context.Context, key, srcPath, encoderVersion string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put = append(f.put, key)
	return nil
}

// fakeCatalog serves canned collection data.
type fakeCatalog struct {
	coll     *youtube.Collection
	universe *youtube.VideoUniverse
	items    map[string][]youtube.PlaylistItem
	details  map[string]youtube.VideoDetails
	channels map[string]*youtube.ChannelInfo
}

func (f *fakeCatalog) CredentialsOK(ctx context.Context) error { return nil }

func (f *fakeCatalog) ResolveCollection(ctx context.Context, typ config.CollectionType, id string) (*youtube.Collection, error) {
	return f.coll, nil
}

func (f *fakeCatalog) BuildVideoUniverse(ctx context.Context, playlists []*youtube.Playlist, dr config.DateRange) (*youtube.VideoUniverse, error) {
	return f.universe, nil
}

func (f *fakeCatalog) PlaylistItems(ctx context.Context, playlistID string) ([]youtube.PlaylistItem, error) {
	return f.items[playlistID], nil
}

func (f *fakeCatalog) VideoDetails(ctx context.Context, videoIDs []string) (map[string]youtube.VideoDetails, error) {
	out := map[string]youtube.VideoDetails{}
	for _, id := range videoIDs {
		if det, ok := f.details[id]; ok {
			out[id] = det
		}
	}
	return out, nil
}

func (f *fakeCatalog) Channel(ctx context.Context, channelID string) (*youtube.ChannelInfo, error) {
	if ch, ok := f.channels[channelID]; ok {
		return ch, nil
	}
	return nil, fmt.Errorf("no such channel %s", channelID)
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.CollectionType = config.CollectionChannel
	cfg.CollectionID = "UCmain"
	cfg.Name = "test-archive"
	cfg.TmpDir = t.TempDir()
	return cfg
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testCatalog() *fakeCatalog {
	uploads := &youtube.Playlist{ID: "UUmain", Title: "Uploads", CreatorID: "CH1", CreatorName: "Main"}
	apple := &youtube.Playlist{ID: "PLa", Title: "Apple", CreatorID: "CH1", CreatorName: "Main"}
	zebra := &youtube.Playlist{ID: "PLz", Title: "Zebra", CreatorID: "CH1", CreatorName: "Main"}
	return &fakeCatalog{
		coll: &youtube.Collection{
			Playlists:         []*youtube.Playlist{zebra, apple, uploads},
			MainChannelID:     "CH1",
			UploadsPlaylistID: "UUmain",
		},
		universe: &youtube.VideoUniverse{
			Order: []string{"vid1", "vid2", "vid3"},
			Items: map[string]youtube.PlaylistItem{
				"vid1": {VideoID: "vid1", Title: "First", PublishedAt: "2024-01-01T00:00:00Z"},
				"vid2": {VideoID: "vid2", Title: "Second", PublishedAt: "2024-01-02T00:00:00Z"},
				"vid3": {VideoID: "vid3", Title: "Orphan", PublishedAt: "2024-01-03T00:00:00Z"},
			},
		},
		items: map[string][]youtube.PlaylistItem{
			"UUmain": {
				{VideoID: "vid1", Title: "First", Position: 0},
				{VideoID: "vid2", Title: "Second", Position: 1},
				{VideoID: "vid3", Title: "Orphan", Position: 2},
			},
			"PLa": {
				{VideoID: "vid2", Title: "Second", Position: 0},
				{VideoID: "vid1", Title: "First", Position: 1},
			},
			"PLz": {
				{VideoID: "vid3", Title: "Orphan", Position: 0},
			},
		},
		details: map[string]youtube.VideoDetails{
			"vid1": {ChannelID: "CH1", ChannelTitle: "Main", Duration: "PT1M"},
			"vid2": {ChannelID: "CH1", ChannelTitle: "Main", Duration: "PT2M"},
			"vid3": {ChannelID: "CHgone", ChannelTitle: "Gone", Duration: "PT3M"},
		},
		channels: map[string]*youtube.ChannelInfo{
			"CH1": {ID: "CH1", Title: "Main Channel", Description: "about", JoinedDate: "2010-01-01"},
		},
	}
}

func newTestScraper(t *testing.T, catalog Catalog, origin OriginDownloader, cache OptimizationCache) (*Scraper, *memSink) {
	sink := newMemSink()
	s, err := New(Options{
		Config:     testConfig(t),
		Catalog:    catalog,
		Cache:      cache,
		Origin:     origin,
		Transcoder: fakeTranscoder{},
		Sink:       sink,
		Logger:     testLogger(),
	})
	require.NoError(t, err)
	return s, sink
}

func TestRunAssemblesDocuments(t *testing.T) {
	s, sink := newTestScraper(t, testCatalog(), &fakeOrigin{}, nil)
	require.NoError(t, s.Run(context.Background()))

	// orphaned vid3 resolved no author, so only Uploads and Apple survive
	var playlists PlaylistsDoc
	sink.item(t, "playlists.json", &playlists)
	require.Len(t, playlists.Playlists, 2)
	assert.Equal(t, "UUmain", playlists.Playlists[0].ID, "uploads playlist sorts first")
	assert.Equal(t, "PLa", playlists.Playlists[1].ID)

	var channel ChannelDoc
	sink.item(t, "channel.json", &channel)
	assert.Equal(t, "CH1", channel.ID)
	assert.Equal(t, "Main Channel", channel.Title)
	assert.Equal(t, Slug("Uploads", "UUmain"), channel.MainPlaylist)
	assert.Equal(t, 3, channel.PlaylistCount)

	var video VideoDoc
	sink.item(t, "videos/"+Slug("First", "vid1")+".json", &video)
	assert.Equal(t, "vid1", video.ID)
	assert.Equal(t, "CH1", video.Author.ChannelID)
	assert.Equal(t, "videos/vid1/video.mp4", video.VideoPath)
	assert.Equal(t, "PT1M", video.Duration)
}

func TestRunOrphanFiltering(t *testing.T) {
	s, sink := newTestScraper(t, testCatalog(), &fakeOrigin{}, nil)
	require.NoError(t, s.Run(context.Background()), "orphans must not fail the run")

	sink.mu.Lock()
	_, orphanDoc := sink.items["videos/"+Slug("Orphan", "vid3")+".json"]
	sink.mu.Unlock()
	assert.False(t, orphanDoc, "orphaned video must not get a document")

	var uploads PlaylistDoc
	sink.item(t, "playlists/"+Slug("Uploads", "UUmain")+".json", &uploads)
	for _, v := range uploads.Videos {
		assert.NotEqual(t, "vid3", v.ID)
	}
}

func TestRunOrdersPlaylistVideosByPosition(t *testing.T) {
	s, sink := newTestScraper(t, testCatalog(), &fakeOrigin{}, nil)
	require.NoError(t, s.Run(context.Background()))

	var apple PlaylistDoc
	sink.item(t, "playlists/"+Slug("Apple", "PLa")+".json", &apple)
	require.Len(t, apple.Videos, 2)
	assert.Equal(t, "vid2", apple.Videos[0].ID, "position order, not discovery order")
	assert.Equal(t, "vid1", apple.Videos[1].ID)
	assert.Equal(t, 2, apple.VideosCount)
}

func TestRunAbortsOnTooManyFailures(t *testing.T) {
	origin := &fakeOrigin{failVideo: map[string]bool{"vid1": true, "vid2": true}}
	s, _ := newTestScraper(t, testCatalog(), origin, nil)

	err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrTooManyFailures)
}

func TestRunFatalOnBatchPanic(t *testing.T) {
	origin := &fakeOrigin{panicOn: "vid2"}
	s, _ := newTestScraper(t, testCatalog(), origin, nil)

	err := s.Run(context.Background())
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
}
