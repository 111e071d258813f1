package youtube

import (
	"context"
	"net/http"
	"testing"

	"ytarchive/config"
)

func playlistPayload(id, channelID string) map[string]any {
	return map[string]any{
		"id": id,
		"snippet": map[string]any{
			"title":        "Playlist " + id,
			"description":  "desc " + id,
			"channelId":    channelID,
			"channelTitle": "Creator",
			"publishedAt":  "2020-06-01T00:00:00Z",
		},
	}
}

// servePlaylistByID answers playlists.list either by id (single playlist
// lookup) or by channelId (owned-playlist listing).
func servePlaylistByID(owned []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if id := q.Get("id"); id != "" {
			writeJSON(w, map[string]any{"items": []any{playlistPayload(id, "UCmain")}})
			return
		}
		items := make([]any, 0, len(owned))
		for _, id := range owned {
			items = append(items, map[string]any{"id": id})
		}
		writeJSON(w, map[string]any{"items": items})
	}
}

func TestResolveCollectionChannel(t *testing.T) {
	f := newFakeAPI(t)
	f.channels = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("forHandle") != "" {
			writeJSON(w, map[string]any{"items": []any{}})
			return
		}
		writeJSON(w, map[string]any{"items": []any{channelPayload("UCmain", "UUmain")}})
	}
	f.playlists = servePlaylistByID([]string{"PLa", "PLb"})

	c := f.client(t)
	col, err := c.ResolveCollection(context.Background(), config.CollectionChannel, "UCmain")
	if err != nil {
		t.Fatalf("ResolveCollection() error = %v", err)
	}

	if col.MainChannelID != "UCmain" {
		t.Errorf("MainChannelID = %q, want UCmain", col.MainChannelID)
	}
	if col.UploadsPlaylistID != "UUmain" {
		t.Errorf("UploadsPlaylistID = %q, want UUmain", col.UploadsPlaylistID)
	}
	got := make([]string, 0, len(col.Playlists))
	for _, pl := range col.Playlists {
		got = append(got, pl.ID)
	}
	want := []string{"PLa", "PLb", "UUmain"}
	if len(got) != len(want) {
		t.Fatalf("playlists = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("playlists[%d] = %q, want %q (uploads last)", i, got[i], want[i])
		}
	}
}

func TestResolveCollectionPlaylistDeduplicates(t *testing.T) {
	f := newFakeAPI(t)
	f.playlists = servePlaylistByID(nil)

	c := f.client(t)
	col, err := c.ResolveCollection(context.Background(), config.CollectionPlaylist, "PLa,PLb,PLa")
	if err != nil {
		t.Fatalf("ResolveCollection() error = %v", err)
	}

	if len(col.Playlists) != 2 {
		t.Fatalf("got %d playlists, want 2 (duplicate removed)", len(col.Playlists))
	}
	if col.Playlists[0].ID != "PLa" || col.Playlists[1].ID != "PLb" {
		t.Errorf("playlist order = [%s %s], want first-seen order [PLa PLb]",
			col.Playlists[0].ID, col.Playlists[1].ID)
	}
	if col.MainChannelID != "UCmain" {
		t.Errorf("MainChannelID = %q, want creator of first playlist", col.MainChannelID)
	}
	if col.UploadsPlaylistID != "" {
		t.Errorf("UploadsPlaylistID = %q, want empty for playlist collections", col.UploadsPlaylistID)
	}
}

func TestResolveCollectionDeduplicatesUploads(t *testing.T) {
	// the uploads playlist may also appear in the channel's own playlist
	// listing; it must still be resolved only once
	f := newFakeAPI(t)
	f.channels = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []any{channelPayload("UCmain", "UUmain")}})
	}
	f.playlists = servePlaylistByID([]string{"UUmain", "PLa"})

	c := f.client(t)
	col, err := c.ResolveCollection(context.Background(), config.CollectionChannel, "UCmain")
	if err != nil {
		t.Fatalf("ResolveCollection() error = %v", err)
	}
	if len(col.Playlists) != 2 {
		t.Fatalf("got %d playlists, want 2", len(col.Playlists))
	}
	if col.Playlists[0].ID != "UUmain" || col.Playlists[1].ID != "PLa" {
		t.Errorf("playlist order = [%s %s], want [UUmain PLa]",
			col.Playlists[0].ID, col.Playlists[1].ID)
	}
}
