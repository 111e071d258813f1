// Package youtube resolves a requested collection into playlists and videos
// using the YouTube Data API v3. All results are typed at the API boundary
// and memoized through the local store, so re-runs and redundant calls never
// hit the network twice for the same key.
package youtube

// Playlist is the resolved catalog record for one playlist.
type Playlist struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorID   string `json:"creatorId"`
	CreatorName string `json:"creatorName"`
	PublishedAt string `json:"publishedAt"`
}

// ChannelInfo is the resolved catalog record for one channel.
type ChannelInfo struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	JoinedDate          string `json:"joinedDate"`
	UploadsPlaylistID   string `json:"uploadsPlaylistId"`
	ProfileThumbnailURL string `json:"profileThumbnailUrl"`
	BannerURL           string `json:"bannerUrl"`
}

// PlaylistItem is one entry of a playlist's item list.
type PlaylistItem struct {
	VideoID          string `json:"videoId"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	PublishedAt      string `json:"publishedAt"`
	VideoPublishedAt string `json:"videoPublishedAt"`
	Position         int64  `json:"position"`
}

// VideoDetails carries the author linkage and duration for one video, from
// the batched videos.list call.
type VideoDetails struct {
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	Duration     string `json:"duration"`
}

// Collection is the output of resolving a user-supplied collection
// reference: the ordered unique playlists, the main channel, and the
// distinguished uploads playlist (empty for pure playlist collections).
type Collection struct {
	Playlists         []*Playlist
	MainChannelID     string
	UploadsPlaylistID string
}

// deleted-entry sentinels used by the enumerator filters
const (
	deletedVideoTitle      = "Deleted video"
	unavailableDescription = "This video is unavailable."
)

// IsDeleted reports whether the entry is a deleted/unavailable placeholder.
func (it PlaylistItem) IsDeleted() bool {
	return it.Title == deletedVideoTitle || it.Description == unavailableDescription
}
