package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtitleCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		ok   bool
	}{
		{"video.en.vtt", "en", true},
		{"video.zh-Hans-CN.vtt", "zh-Hans-CN", true},
		{"video.mp4", "", false},
		{"video.vtt", "", false},
		{"notes.txt", "", false},
	}
	for _, tt := range tests {
		code, ok := subtitleCode(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.code, code, tt.name)
	}
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", languageName("en"))
	// YouTube's legacy Hebrew code resolves through the mapping table
	assert.Equal(t, "Hebrew", languageName("iw"))
	assert.Equal(t, "Spanish", languageName("es-419"))
	// unparseable codes fall back to the raw code
	assert.Equal(t, "zz-bogus!", languageName("zz-bogus!"))
}

func TestListSubtitleTracks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"video.en.vtt", "video.fr.vtt", "video.mp4", "video.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	tracks := listSubtitleTracks(dir)
	require.Len(t, tracks, 2)
	// sorted by display name: English before French
	assert.Equal(t, Subtitle{Code: "en", Name: "English"}, tracks[0])
	assert.Equal(t, Subtitle{Code: "fr", Name: "French"}, tracks[1])
}
