package youtube

import (
	"context"
	"time"

	"ytarchive/config"
)

// VideoUniverse is the de-duplicated, discovery-ordered set of videos across
// all playlists of a run.
type VideoUniverse struct {
	Order []string                `json:"order"`
	Items map[string]PlaylistItem `json:"items"`
}

// BuildVideoUniverse enumerates every playlist's items, drops entries outside
// the date range and deleted/unavailable placeholders, and merges the
// survivors into a unique video-id universe. The merged result is memoized
// under one key so later calls in the same run load it from disk.
//
// A video appearing in several playlists is kept once; the last-seen entry
// wins but duplicates are expected to be identical, and the discovery order
// of the first occurrence is preserved.
func (c *Client) BuildVideoUniverse(ctx context.Context, playlists []*Playlist, dr config.DateRange) (*VideoUniverse, error) {
	const key = "videos"
	universe := &VideoUniverse{Items: make(map[string]PlaylistItem)}
	if c.store.Load(key, universe) {
		return universe, nil
	}

	for _, pl := range playlists {
		items, err := c.PlaylistItems(ctx, pl.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if !withinRange(item, dr) {
				continue
			}
			if item.IsDeleted() {
				continue
			}
			if _, seen := universe.Items[item.VideoID]; !seen {
				universe.Order = append(universe.Order, item.VideoID)
			}
			universe.Items[item.VideoID] = item
		}
	}

	if err := c.store.Save(key, universe); err != nil {
		return nil, err
	}
	return universe, nil
}

func withinRange(item PlaylistItem, dr config.DateRange) bool {
	if !dr.Bounded() {
		return true
	}
	published, err := time.Parse(time.RFC3339, item.PublishedAt)
	if err != nil {
		return false
	}
	return dr.Contains(published)
}
