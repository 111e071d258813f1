package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ytarchive/youtube"
)

// assembleInput carries everything the assembler cross-references: the
// resolved collection, the video universe, the acquisition outcome, the
// batched video details, the resolved channels and the per-playlist item
// lists.
type assembleInput struct {
	coll      *youtube.Collection
	universe  *youtube.VideoUniverse
	succeeded []string
	details   map[string]youtube.VideoDetails
	channels  map[string]*youtube.ChannelInfo
	items     map[string][]youtube.PlaylistItem
}

// assemble builds and sinks the cross-referenced output documents, then
// garbage-collects working-area video directories that did not make it
// into the output.
func (s *Scraper) assemble(in assembleInput, acq *acquirer) error {
	included := s.includedVideos(in)

	slugs := make(map[string]string, len(included))
	for id := range included {
		slugs[id] = Slug(in.universe.Items[id].Title, id)
	}

	if err := s.sinkVideoDocs(in, included, slugs, acq); err != nil {
		return err
	}
	if err := s.sinkPlaylistDocs(in, included, slugs); err != nil {
		return err
	}
	if err := s.sinkChannelDoc(in); err != nil {
		return err
	}
	if err := s.sinkUIConfig(); err != nil {
		return err
	}
	return s.collectGarbage(acq.videosDir, included)
}

// includedVideos filters the succeeded set down to videos whose author
// lookup resolved. Orphaned entries are dropped silently; they must not
// fail the run.
func (s *Scraper) includedVideos(in assembleInput) map[string]bool {
	included := make(map[string]bool, len(in.succeeded))
	for _, id := range in.succeeded {
		det, ok := in.details[id]
		if !ok || in.channels[det.ChannelID] == nil {
			s.log.WithField("video", id).Debug("dropping video without resolved author")
			continue
		}
		included[id] = true
	}
	return included
}

func (s *Scraper) videoAuthor(in assembleInput, id string) Author {
	det := in.details[id]
	ch := in.channels[det.ChannelID]
	return Author{
		ChannelID:   det.ChannelID,
		Name:        det.ChannelTitle,
		ProfilePath: channelProfilePath(ch.ID),
	}
}

func (s *Scraper) sinkVideoDocs(in assembleInput, included map[string]bool, slugs map[string]string, acq *acquirer) error {
	for _, id := range in.universe.Order {
		if !included[id] {
			continue
		}
		item := in.universe.Items[id]

		var tracks []Subtitle
		acq.store.Load("subtitles_"+id, &tracks)
		subtitlePath := ""
		if len(tracks) > 0 {
			subtitlePath = "videos/" + id
		}
		if tracks == nil {
			tracks = []Subtitle{}
		}

		doc := VideoDoc{
			ID:              id,
			Title:           item.Title,
			Description:     item.Description,
			Author:          s.videoAuthor(in, id),
			PublicationDate: publicationDate(item),
			VideoPath:       assetPath(id, "video."+acq.videoPreset.Ext),
			ThumbnailPath:   assetPath(id, "video."+acq.thumbPreset.Ext),
			SubtitlePath:    subtitlePath,
			SubtitleList:    tracks,
			Duration:        in.details[id].Duration,
		}
		index := &IndexData{Title: item.Title, Content: item.Description}
		if err := s.sinkJSON("videos/"+slugs[id]+".json", doc, false, index); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scraper) sinkPlaylistDocs(in assembleInput, included map[string]bool, slugs map[string]string) error {
	ordered := sortedPlaylists(in.coll.Playlists, in.coll.UploadsPlaylistID)

	var previews []PlaylistPreview
	for _, pl := range ordered {
		videos := playlistVideos(in, pl.ID, included, slugs)
		if len(videos) == 0 {
			s.log.WithField("playlist", pl.ID).Debug("skipping playlist with no included videos")
			continue
		}
		plSlug := Slug(pl.Title, pl.ID)
		doc := PlaylistDoc{
			ID:              pl.ID,
			Author:          playlistAuthor(in, pl),
			Title:           pl.Title,
			Description:     pl.Description,
			PublicationDate: pl.PublishedAt,
			ThumbnailPath:   videos[0].ThumbnailPath,
			Videos:          videos,
			VideosCount:     len(videos),
		}
		index := &IndexData{Title: pl.Title, Content: pl.Description}
		if err := s.sinkJSON("playlists/"+plSlug+".json", doc, false, index); err != nil {
			return err
		}
		previews = append(previews, PlaylistPreview{
			Slug:          plSlug,
			ID:            pl.ID,
			Title:         pl.Title,
			ThumbnailPath: videos[0].ThumbnailPath,
			VideosCount:   len(videos),
			MainVideoSlug: videos[0].Slug,
		})
	}
	if previews == nil {
		previews = []PlaylistPreview{}
	}
	return s.sinkJSON("playlists.json", PlaylistsDoc{Playlists: previews}, false, nil)
}

// playlistVideos returns the included videos of one playlist ordered by
// their stored playlist-item position, not discovery order.
func playlistVideos(in assembleInput, playlistID string, included map[string]bool, slugs map[string]string) []VideoPreview {
	items := append([]youtube.PlaylistItem(nil), in.items[playlistID]...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	var videos []VideoPreview
	for _, it := range items {
		if !included[it.VideoID] {
			continue
		}
		videos = append(videos, VideoPreview{
			Slug:          slugs[it.VideoID],
			ID:            it.VideoID,
			Title:         it.Title,
			ThumbnailPath: assetPath(it.VideoID, "video.webp"),
			Duration:      in.details[it.VideoID].Duration,
		})
	}
	return videos
}

func playlistAuthor(in assembleInput, pl *youtube.Playlist) Author {
	a := Author{ChannelID: pl.CreatorID, Name: pl.CreatorName}
	if in.channels[pl.CreatorID] != nil {
		a.ProfilePath = channelProfilePath(pl.CreatorID)
	}
	return a
}

// sortedPlaylists orders playlists alphabetically by title, with the
// uploads playlist (when present) always first.
func sortedPlaylists(playlists []*youtube.Playlist, uploadsID string) []*youtube.Playlist {
	out := append([]*youtube.Playlist(nil), playlists...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ID == uploadsID {
			return out[j].ID != uploadsID
		}
		if out[j].ID == uploadsID {
			return false
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// mainPlaylistSlug picks the navigation entry point: the uploads playlist
// when the collection has one, else the first playlist in request order.
func mainPlaylistSlug(coll *youtube.Collection) string {
	for _, pl := range coll.Playlists {
		if pl.ID == coll.UploadsPlaylistID {
			return Slug(pl.Title, pl.ID)
		}
	}
	if len(coll.Playlists) > 0 {
		pl := coll.Playlists[0]
		return Slug(pl.Title, pl.ID)
	}
	return ""
}

func (s *Scraper) sinkChannelDoc(in assembleInput) error {
	ch := in.channels[in.coll.MainChannelID]
	if ch == nil {
		return fmt.Errorf("scraper: main channel %s was not resolved", in.coll.MainChannelID)
	}
	title := s.cfg.Title
	if title == "" {
		title = ch.Title
	}
	description := s.cfg.Description
	if description == "" {
		description = ch.Description
	}
	creator := s.cfg.CreatorName
	if creator == "" {
		creator = ch.Title
	}
	doc := ChannelDoc{
		ID:                 ch.ID,
		Title:              title,
		Description:        description,
		ChannelName:        creator,
		ChannelDescription: ch.Description,
		ProfilePath:        channelProfilePath(ch.ID),
		CollectionType:     string(s.cfg.CollectionType),
		MainPlaylist:       mainPlaylistSlug(in.coll),
		PlaylistCount:      len(in.coll.Playlists),
		JoinedDate:         ch.JoinedDate,
	}
	return s.sinkJSON("channel.json", doc, true, &IndexData{Title: title, Content: description})
}

func (s *Scraper) sinkUIConfig() error {
	doc := UIConfigDoc{
		MainColor:      s.cfg.MainColor,
		SecondaryColor: s.cfg.SecondaryColor,
	}
	return s.sinkJSON("config.json", doc, false, nil)
}

func (s *Scraper) sinkJSON(path string, doc any, isFront bool, index *IndexData) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("scraper: marshal %s: %w", path, err)
	}
	return s.sink.AddItem(path, data, "application/json", isFront, index)
}

// collectGarbage removes working-area video directories that are not part
// of the final output, stale leftovers of failed or orphaned videos.
func (s *Scraper) collectGarbage(videosDir string, included map[string]bool) error {
	entries, err := os.ReadDir(videosDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scraper: read %s: %w", videosDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() || included[e.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(videosDir, e.Name())); err != nil {
			s.log.WithField("dir", e.Name()).WithError(err).Warn("could not remove stale video dir")
		}
	}
	return nil
}

func channelProfilePath(channelID string) string {
	return "channels/" + channelID + "/profile.jpg"
}

// publicationDate prefers the video's own publish date over the
// playlist-item addition date.
func publicationDate(item youtube.PlaylistItem) string {
	if item.VideoPublishedAt != "" {
		return item.VideoPublishedAt
	}
	return item.PublishedAt
}
