// Package ytarchive turns a YouTube collection (a channel, a user's
// uploads, or one or more playlists) into a self-contained offline
// archive: every video, its thumbnail, its subtitle tracks, and a
// cross-referenced metadata graph of channels, playlists and videos.
//
// # Overview
//
// A run flows strictly top to bottom:
//
//   - youtube: resolve the requested collection into an ordered,
//     de-duplicated playlist list and a unique video-id universe
//   - scraper: acquire each video's assets across a bounded worker pool,
//     cache-first against an S3 optimization cache with origin fallback,
//     then assemble the final output documents
//   - the archive sink receives every asset and document
//
// # Quick Start
//
//	cfg, _ := config.Load()
//	cfg.CollectionType = config.CollectionChannel
//	cfg.CollectionID = "UCxxxxx"
//	cfg.APIKey = "..."
//	cfg.Name = "my-archive"
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// then wire the collaborators and run; see cli/main.go for the full
// assembly.
//
// # Configuration
//
// Settings merge from three sources, highest priority first:
//
//  1. Environment variables (YTARCHIVE_API_KEY, YTARCHIVE_CACHE_URL,
//     YTARCHIVE_YTDLP_PATH, YTARCHIVE_FFMPEG_PATH, YTARCHIVE_CONCURRENCY,
//     YTARCHIVE_API_TIMEOUT, YTARCHIVE_DEBUG)
//  2. Config file (ytarchive.json or ~/.config/ytarchive/ytarchive.json)
//  3. Defaults
//
// # Error Handling
//
// All operations return errors supporting the standard patterns:
//
//	if errors.Is(err, ytarchive.ErrChannelNotFound) {
//		fmt.Println("channel not found")
//	}
//
//	var acqErr *ytarchive.AcquisitionError
//	if errors.As(err, &acqErr) {
//		fmt.Printf("video %s failed at stage %s\n", acqErr.VideoID, acqErr.Stage)
//	}
//
// # Dependencies
//
// ytarchive requires yt-dlp and ffmpeg to be installed and available in
// PATH, or specified via YTARCHIVE_YTDLP_PATH and YTARCHIVE_FFMPEG_PATH.
package ytarchive
