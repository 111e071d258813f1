package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"ytarchive/youtube"
)

// sinkAuthorBranding downloads the profile image of every resolved
// channel and hands it to the sink. Profile images are small; failures
// are logged but do not fail the run.
func (s *Scraper) sinkAuthorBranding(ctx context.Context, channels map[string]*youtube.ChannelInfo, channelsDir string) {
	for id, ch := range channels {
		if ch == nil || ch.ProfileThumbnailURL == "" {
			continue
		}
		if err := s.sinkProfileImage(ctx, ch, channelsDir); err != nil {
			s.log.WithField("channel", id).WithError(err).Warn("could not store profile image")
		}
	}
}

func (s *Scraper) sinkProfileImage(ctx context.Context, ch *youtube.ChannelInfo, channelsDir string) error {
	dir := filepath.Join(channelsDir, ch.ID)
	local := filepath.Join(dir, "profile.jpg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := downloadToFile(ctx, ch.ProfileThumbnailURL, local); err != nil {
		return err
	}
	return s.sink.AddFile(channelProfilePath(ch.ID), local, "image/jpeg", true)
}

func downloadToFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
