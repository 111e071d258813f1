package scraper

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Subtitle is one downloaded subtitle track.
type Subtitle struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// YouTube emits a handful of language codes that standard language
// matching does not accept; map them to their canonical equivalents.
var youtubeLangMap = map[string]string{
	"iw":         "he",
	"es-419":     "es",
	"zh-Hans-CN": "zh-cn",
	"zh-Hant-TW": "zh-tw",
	"zh-Hant-HK": "zh-hk",
	"zh-Hans-SG": "zh-sg",
	"mo":         "ro",
	"sh":         "srp",
}

// listSubtitleTracks scans dir for yt-dlp subtitle output
// (video.<lang>.vtt) and returns the tracks sorted by display name.
func listSubtitleTracks(dir string) []Subtitle {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var tracks []Subtitle
	for _, e := range entries {
		code, ok := subtitleCode(e.Name())
		if !ok {
			continue
		}
		tracks = append(tracks, Subtitle{Code: code, Name: languageName(code)})
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Name < tracks[j].Name })
	return tracks
}

// subtitleCode extracts the language code from a "video.<lang>.vtt" name.
func subtitleCode(name string) (string, bool) {
	if filepath.Ext(name) != ".vtt" {
		return "", false
	}
	base := strings.TrimSuffix(name, ".vtt")
	i := strings.Index(base, ".")
	if i < 0 || i == len(base)-1 {
		return "", false
	}
	return base[i+1:], true
}

func languageName(code string) string {
	mapped := code
	if m, ok := youtubeLangMap[code]; ok {
		mapped = m
	}
	tag, err := language.Parse(mapped)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
