package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"ytarchive/retry"
	"ytarchive/store"
)

const (
	resultsPerPage      = 50
	maxVideosPerRequest = 50
)

// Client wraps the Data API service with memoization, per-call timeouts and
// a retry policy for transient failures.
type Client struct {
	svc     *yt.Service
	store   *store.Store
	log     logrus.FieldLogger
	policy  retry.Policy
	timeout time.Duration
}

// ClientOptions configures a catalog client.
type ClientOptions struct {
	APIKey string
	// Store memoizes every resolved record; mandatory.
	Store  *store.Store
	Logger logrus.FieldLogger
	// Retry applies to every catalog call. Zero value means no retries.
	Retry retry.Policy
	// Timeout bounds each individual API call. Zero means 60s.
	Timeout time.Duration
	// Endpoint overrides the API base URL (tests).
	Endpoint string
}

// NewClient creates a catalog client.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("youtube: api key required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("youtube: store required")
	}
	svcOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := yt.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		svc:     svc,
		store:   opts.Store,
		log:     log,
		policy:  opts.Retry,
		timeout: timeout,
	}, nil
}

// call wraps one API operation with the per-call timeout and retry policy.
func (c *Client) call(ctx context.Context, op func(context.Context) error) error {
	return retry.Do(ctx, c.policy, isTransient, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return op(callCtx)
	})
}

// CredentialsOK probes the API with a minimal search call. It is run once,
// before any work begins.
func (c *Client) CredentialsOK(ctx context.Context) error {
	err := c.call(ctx, func(ctx context.Context) error {
		_, err := c.svc.Search.List([]string{"snippet"}).MaxResults(1).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	return nil
}

// Channel returns the memoized channel record for a channel id.
func (c *Client) Channel(ctx context.Context, channelID string) (*ChannelInfo, error) {
	key := "channel_" + channelID
	var info ChannelInfo
	if c.store.Load(key, &info) {
		return &info, nil
	}

	c.log.WithField("channel", channelID).Debug("query youtube-api for channel")
	var resp *yt.ChannelListResponse
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.channelCall(channelID, lookupByID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, &CatalogError{Op: "channel", ID: channelID, Err: err}
	}
	if len(resp.Items) == 0 {
		return nil, &CatalogError{Op: "channel", ID: channelID, Err: ErrChannelNotFound}
	}

	got := channelInfoFrom(resp.Items[0])
	if err := c.store.Save(key, got); err != nil {
		return nil, err
	}
	return got, nil
}

type lookupForm int

const (
	lookupByHandle lookupForm = iota
	lookupByID
	lookupByUsername
)

func (c *Client) channelCall(identifier string, form lookupForm) *yt.ChannelsListCall {
	call := c.svc.Channels.List([]string{"brandingSettings", "snippet", "contentDetails"})
	switch form {
	case lookupByHandle:
		return call.ForHandle(identifier)
	case lookupByUsername:
		return call.ForUsername(identifier)
	default:
		return call.Id(identifier)
	}
}

// ResolveChannel resolves a user-supplied identifier (handle, channel id or
// legacy username) to a channel record, trying each lookup form in order and
// taking the first match.
func (c *Client) ResolveChannel(ctx context.Context, identifier string) (*ChannelInfo, error) {
	key := "channel_lookup_" + identifier
	var info ChannelInfo
	if c.store.Load(key, &info) {
		return &info, nil
	}

	for _, form := range []lookupForm{lookupByHandle, lookupByID, lookupByUsername} {
		var resp *yt.ChannelListResponse
		err := c.call(ctx, func(ctx context.Context) error {
			var err error
			resp, err = c.channelCall(identifier, form).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, &CatalogError{Op: "resolve channel", ID: identifier, Err: err}
		}
		if len(resp.Items) == 0 {
			continue
		}

		got := channelInfoFrom(resp.Items[0])
		if err := c.store.Save(key, got); err != nil {
			return nil, err
		}
		// also memoize under the canonical id for later Channel calls
		if err := c.store.Save("channel_"+got.ID, got); err != nil {
			return nil, err
		}
		return got, nil
	}
	return nil, &CatalogError{Op: "resolve channel", ID: identifier, Err: ErrChannelNotFound}
}

func channelInfoFrom(ch *yt.Channel) *ChannelInfo {
	info := &ChannelInfo{ID: ch.Id}
	if ch.Snippet != nil {
		info.Title = ch.Snippet.Title
		info.Description = ch.Snippet.Description
		info.JoinedDate = ch.Snippet.PublishedAt
		if t := ch.Snippet.Thumbnails; t != nil {
			// high is 800px; medium (240px) is plenty for a 100px profile
			if t.Medium != nil {
				info.ProfileThumbnailURL = t.Medium.Url
			} else if t.Default != nil {
				info.ProfileThumbnailURL = t.Default.Url
			}
		}
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		info.UploadsPlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	if ch.BrandingSettings != nil && ch.BrandingSettings.Image != nil {
		info.BannerURL = ch.BrandingSettings.Image.BannerExternalUrl
	}
	return info
}

// channelPlaylistIDs lists all playlist ids owned by a channel, paginated
// and memoized.
func (c *Client) channelPlaylistIDs(ctx context.Context, channelID string) ([]string, error) {
	key := "channel_" + channelID + "_playlists"
	var ids []string
	if c.store.Load(key, &ids) {
		return ids, nil
	}

	c.log.WithField("channel", channelID).Debug("query youtube-api for channel playlists")
	pageToken := ""
	for {
		var resp *yt.PlaylistListResponse
		err := c.call(ctx, func(ctx context.Context) error {
			var err error
			resp, err = c.svc.Playlists.List([]string{"id"}).
				ChannelId(channelID).
				MaxResults(resultsPerPage).
				PageToken(pageToken).
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, &CatalogError{Op: "list playlists", ID: channelID, Err: err}
		}
		for _, item := range resp.Items {
			ids = append(ids, item.Id)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if err := c.store.Save(key, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Playlist returns the memoized playlist record for a playlist id.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*Playlist, error) {
	key := "playlist_" + playlistID
	var pl Playlist
	if c.store.Load(key, &pl) {
		return &pl, nil
	}

	c.log.WithField("playlist", playlistID).Debug("query youtube-api for playlist")
	var resp *yt.PlaylistListResponse
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Playlists.List([]string{"snippet"}).
			Id(playlistID).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, &CatalogError{Op: "playlist", ID: playlistID, Err: err}
	}
	if len(resp.Items) == 0 {
		return nil, &CatalogError{Op: "playlist", ID: playlistID, Err: ErrPlaylistNotFound}
	}

	item := resp.Items[0]
	got := &Playlist{ID: playlistID}
	if item.Snippet != nil {
		got.Title = item.Snippet.Title
		got.Description = item.Snippet.Description
		got.CreatorID = item.Snippet.ChannelId
		got.CreatorName = item.Snippet.ChannelTitle
		got.PublishedAt = item.Snippet.PublishedAt
	}
	if err := c.store.Save(key, got); err != nil {
		return nil, err
	}
	return got, nil
}

// PlaylistItems lists all items of a playlist in playlist order, paginated
// and memoized.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	key := "playlist_" + playlistID + "_videos"
	var items []PlaylistItem
	if c.store.Load(key, &items) {
		return items, nil
	}

	c.log.WithField("playlist", playlistID).Debug("query youtube-api for playlist items")
	pageToken := ""
	for {
		var resp *yt.PlaylistItemListResponse
		err := c.call(ctx, func(ctx context.Context) error {
			var err error
			resp, err = c.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(resultsPerPage).
				PageToken(pageToken).
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, &CatalogError{Op: "list playlist items", ID: playlistID, Err: err}
		}
		for _, item := range resp.Items {
			entry := PlaylistItem{}
			if item.ContentDetails != nil {
				entry.VideoID = item.ContentDetails.VideoId
				entry.VideoPublishedAt = item.ContentDetails.VideoPublishedAt
			}
			if item.Snippet != nil {
				entry.Title = item.Snippet.Title
				entry.Description = item.Snippet.Description
				entry.PublishedAt = item.Snippet.PublishedAt
				entry.Position = item.Snippet.Position
			}
			items = append(items, entry)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if err := c.store.Save(key, items); err != nil {
		return nil, err
	}
	return items, nil
}

// VideoDetails fetches author linkage and duration for the given video ids,
// chunked to the API's maximum id count per call and memoized as one blob.
// Ids the API does not return (removed videos) are simply absent from the
// result.
func (c *Client) VideoDetails(ctx context.Context, videoIDs []string) (map[string]VideoDetails, error) {
	const key = "videos_channels"
	details := make(map[string]VideoDetails)
	if c.store.Load(key, &details) {
		return details, nil
	}

	c.log.WithField("count", len(videoIDs)).Debug("query youtube-api for video details")
	for start := 0; start < len(videoIDs); start += maxVideosPerRequest {
		end := start + maxVideosPerRequest
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		if err := c.videoDetailsChunk(ctx, videoIDs[start:end], details); err != nil {
			return nil, err
		}
	}

	if err := c.store.Save(key, details); err != nil {
		return nil, err
	}
	return details, nil
}

func (c *Client) videoDetailsChunk(ctx context.Context, ids []string, out map[string]VideoDetails) error {
	pageToken := ""
	for {
		var resp *yt.VideoListResponse
		err := c.call(ctx, func(ctx context.Context) error {
			var err error
			resp, err = c.svc.Videos.List([]string{"snippet", "contentDetails"}).
				Id(ids...).
				MaxResults(maxVideosPerRequest).
				PageToken(pageToken).
				Context(ctx).Do()
			return err
		})
		if err != nil {
			return &CatalogError{Op: "video details", ID: strings.Join(ids, ","), Err: err}
		}
		for _, item := range resp.Items {
			d := VideoDetails{}
			if item.Snippet != nil {
				d.ChannelID = item.Snippet.ChannelId
				d.ChannelTitle = item.Snippet.ChannelTitle
			}
			if item.ContentDetails != nil {
				d.Duration = item.ContentDetails.Duration
			}
			out[item.Id] = d
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return nil
		}
	}
}
