// Package config manages run configuration for the archiver.
//
// A Config value is built once (defaults, then optional JSON file, then
// environment variables) and passed by reference into every component
// constructor. There is no process-wide configuration state, so several
// pipelines with different settings can coexist in one process.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CollectionType selects the user-requested scope of a run.
type CollectionType string

const (
	CollectionChannel  CollectionType = "channel"
	CollectionUser     CollectionType = "user"
	CollectionPlaylist CollectionType = "playlist"
)

// YouTube ids never exceed this length; longer channel inputs are rejected
// before any API quota is spent on them.
const maxYouTubeIDLength = 24

// Config holds all settings for one archiving run.
type Config struct {
	// CollectionType is the scope of the run: channel, user or playlist.
	CollectionType CollectionType `json:"collection_type"`
	// CollectionID is the channel id/handle, user name, or comma-separated
	// playlist ids, depending on CollectionType.
	CollectionID string `json:"collection_id"`
	// APIKey is the YouTube Data API v3 key.
	APIKey string `json:"api_key"`

	// VideoFormat is the target container: "mp4" or "webm".
	VideoFormat string `json:"video_format"`
	// LowQuality selects the low-bitrate encoding presets.
	LowQuality bool `json:"low_quality"`
	// AllSubtitles additionally fetches auto-generated subtitle tracks.
	AllSubtitles bool `json:"all_subtitles"`

	// Concurrency is the number of parallel acquisition workers.
	Concurrency int `json:"concurrency"`
	// DateAfter keeps only videos published on or after this date,
	// in YYYYMMDD form. Empty means no lower bound.
	DateAfter string `json:"date_after"`

	// CacheURL is the S3 URL (with credentials) of the optimization cache.
	// Empty disables the cache.
	CacheURL string `json:"cache_url"`
	// UseAnyOptimizedVersion accepts cached assets regardless of the
	// encoder version that produced them.
	UseAnyOptimizedVersion bool `json:"use_any_optimized_version"`

	// OutputDir receives the assembled archive contents.
	OutputDir string `json:"output_dir"`
	// TmpDir hosts the temporary build folder. Empty uses the OS default.
	TmpDir string `json:"tmp_dir"`
	// StatsPath, when set, receives {"done": n, "total": m} progress JSON.
	StatsPath string `json:"stats_path"`

	// Title, Description and CreatorName override the values derived from
	// the main channel (or single requested playlist).
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
	// Name is the archive identifier; mandatory.
	Name string `json:"name"`
	// MainColor and SecondaryColor are passed through to the UI config
	// document when set.
	MainColor      string `json:"main_color"`
	SecondaryColor string `json:"secondary_color"`

	// YtdlpPath is the origin downloader executable (default "yt-dlp").
	YtdlpPath string `json:"ytdlp_path"`
	// FFmpegPath is the transcoder executable (default "ffmpeg").
	FFmpegPath string `json:"ffmpeg_path"`

	// APITimeout bounds each outbound catalog/cache call.
	APITimeout time.Duration `json:"api_timeout"`
	// CatalogRetries is the attempt count for catalog API calls (1 = no
	// retry). Acquisition calls are isolation-only and never retried at
	// this level; the origin downloader applies its own fragment retries.
	CatalogRetries int `json:"catalog_retries"`

	// Debug enables per-call log detail.
	Debug bool `json:"debug"`
}

// Default returns configuration with safe defaults.
func Default() *Config {
	return &Config{
		VideoFormat:    "mp4",
		Concurrency:    2,
		OutputDir:      "output",
		YtdlpPath:      "yt-dlp",
		FFmpegPath:     "ffmpeg",
		APITimeout:     60 * time.Second,
		CatalogRetries: 4,
	}
}

// Load builds configuration from defaults, an optional JSON file and
// environment variables, in increasing priority, then validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads ytarchive.json from the working directory or the user
// config directory, whichever exists first.
func (c *Config) loadFromFile() error {
	paths := []string{
		"ytarchive.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ytarchive", "ytarchive.json"),
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}
	return os.ErrNotExist
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("YTARCHIVE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("YTARCHIVE_CACHE_URL"); v != "" {
		c.CacheURL = v
	}
	if v := os.Getenv("YTARCHIVE_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("YTARCHIVE_FFMPEG_PATH"); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv("YTARCHIVE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv("YTARCHIVE_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.APITimeout = d
		}
	}
	if v := os.Getenv("YTARCHIVE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Validate checks the merged configuration and normalizes the collection id.
func (c *Config) Validate() error {
	switch c.CollectionType {
	case CollectionChannel, CollectionUser, CollectionPlaylist:
	default:
		return fmt.Errorf("invalid collection type %q", c.CollectionType)
	}

	// spaces are never part of a YouTube id
	c.CollectionID = strings.ReplaceAll(c.CollectionID, " ", "")
	if c.CollectionID == "" {
		return fmt.Errorf("collection id is mandatory")
	}
	if c.CollectionType == CollectionChannel && len(c.CollectionID) > maxYouTubeIDLength {
		return fmt.Errorf("invalid channel id %q", c.CollectionID)
	}
	if strings.Contains(c.CollectionID, ",") && c.CollectionType != CollectionPlaylist {
		return fmt.Errorf("comma-separated ids are only valid for playlist collections")
	}

	if c.APIKey == "" {
		return fmt.Errorf("api key is mandatory")
	}
	if c.Name == "" {
		return fmt.Errorf("name is mandatory")
	}
	switch c.VideoFormat {
	case "mp4", "webm":
	default:
		return fmt.Errorf("invalid video format %q", c.VideoFormat)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if c.CatalogRetries < 1 {
		return fmt.Errorf("catalog retries must be at least 1")
	}
	if c.DateAfter != "" {
		if _, err := ParseDateRange(c.DateAfter); err != nil {
			return err
		}
	}
	return nil
}

// QualityTier names the encoding tier used in cache keys.
func (c *Config) QualityTier() string {
	if c.LowQuality {
		return "low"
	}
	return "high"
}

// DateRange returns the configured publication date window.
func (c *Config) DateRange() DateRange {
	if c.DateAfter == "" {
		return DateRange{}
	}
	dr, _ := ParseDateRange(c.DateAfter)
	return dr
}
