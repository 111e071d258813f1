package youtube

import (
	"context"
	"strings"

	"ytarchive/config"
)

// ResolveCollection turns the user-supplied collection reference into the
// ordered unique playlist list, the main channel id and the uploads playlist
// id.
//
// Channel and user collections resolve the identifier to a channel, list all
// of its playlists and append the canonical uploads playlist last. Playlist
// collections take the comma-separated ids directly; the main channel is the
// creator of the first playlist and there is no uploads playlist.
func (c *Client) ResolveCollection(ctx context.Context, typ config.CollectionType, id string) (*Collection, error) {
	col := &Collection{}

	var playlistIDs []string
	switch typ {
	case config.CollectionChannel, config.CollectionUser:
		channel, err := c.ResolveChannel(ctx, id)
		if err != nil {
			return nil, err
		}
		col.MainChannelID = channel.ID

		playlistIDs, err = c.channelPlaylistIDs(ctx, channel.ID)
		if err != nil {
			return nil, err
		}
		// the uploads playlist contains everything and is always included
		playlistIDs = append(playlistIDs, channel.UploadsPlaylistID)
		col.UploadsPlaylistID = channel.UploadsPlaylistID

	case config.CollectionPlaylist:
		playlistIDs = strings.Split(id, ",")

	default:
		return nil, &CatalogError{Op: "resolve collection", ID: id, Err: ErrPlaylistNotFound}
	}

	for _, playlistID := range dedupeOrdered(playlistIDs) {
		pl, err := c.Playlist(ctx, playlistID)
		if err != nil {
			return nil, err
		}
		col.Playlists = append(col.Playlists, pl)
	}

	if col.MainChannelID == "" && len(col.Playlists) > 0 {
		col.MainChannelID = col.Playlists[0].CreatorID
	}
	return col, nil
}

// dedupeOrdered removes duplicates while preserving first-seen order.
func dedupeOrdered(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
