package scraper

// Output document schemas consumed by the front-end inside the archive.
// Field names are part of the package format and must stay camelCase.

// Author links a video back to its channel.
type Author struct {
	ChannelID   string `json:"channelId"`
	Name        string `json:"name"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// VideoDoc is the full per-video document.
type VideoDoc struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Author          Author     `json:"author"`
	PublicationDate string     `json:"publicationDate"`
	VideoPath       string     `json:"videoPath"`
	ThumbnailPath   string     `json:"thumbnailPath"`
	SubtitlePath    string     `json:"subtitlePath,omitempty"`
	SubtitleList    []Subtitle `json:"subtitleList"`
	Duration        string     `json:"duration"`
}

// VideoPreview is the per-video entry embedded in playlist documents.
type VideoPreview struct {
	Slug          string `json:"slug"`
	ID            string `json:"id"`
	Title         string `json:"title"`
	ThumbnailPath string `json:"thumbnailPath"`
	Duration      string `json:"duration"`
}

// PlaylistDoc is the full per-playlist document.
type PlaylistDoc struct {
	ID              string         `json:"id"`
	Author          Author         `json:"author"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	PublicationDate string         `json:"publicationDate"`
	ThumbnailPath   string         `json:"thumbnailPath"`
	Videos          []VideoPreview `json:"videos"`
	VideosCount     int            `json:"videosCount"`
}

// PlaylistPreview is the per-playlist entry in the playlists listing.
type PlaylistPreview struct {
	Slug          string `json:"slug"`
	ID            string `json:"id"`
	Title         string `json:"title"`
	ThumbnailPath string `json:"thumbnailPath"`
	VideosCount   int    `json:"videosCount"`
	MainVideoSlug string `json:"mainVideoSlug"`
}

// PlaylistsDoc lists every selectable playlist, uploads first then
// alphabetical.
type PlaylistsDoc struct {
	Playlists []PlaylistPreview `json:"playlists"`
}

// ChannelDoc describes the collection's main channel.
type ChannelDoc struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	ChannelName        string `json:"channelName"`
	ChannelDescription string `json:"channelDescription"`
	ProfilePath        string `json:"profilePath,omitempty"`
	BannerPath         string `json:"bannerPath,omitempty"`
	CollectionType     string `json:"collectionType"`
	MainPlaylist       string `json:"mainPlaylist"`
	PlaylistCount      int    `json:"playlistCount"`
	JoinedDate         string `json:"joinedDate"`
}

// UIConfigDoc carries branding values through to the front-end.
type UIConfigDoc struct {
	MainColor      string `json:"mainColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}
