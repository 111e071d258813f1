// Package transcode re-encodes downloaded assets with ffmpeg using
// versioned presets, so cached renditions can be matched to the preset
// that produced them.
package transcode

import "fmt"

// Preset is a named, versioned ffmpeg argument set. Bump Version whenever
// Args change in a way that alters the output, so stale cached renditions
// stop matching.
type Preset struct {
	Name    string
	Version int
	// Args are the ffmpeg arguments between -i <src> and the output path.
	Args []string
	// Ext is the output container extension without the dot.
	Ext string
}

// VersionTag returns the encoder version string stored alongside cached
// renditions, e.g. "v2".
func (p Preset) VersionTag() string {
	return fmt.Sprintf("v%d", p.Version)
}

// VideoPreset returns the encoding preset for the given container format
// and quality selection.
func VideoPreset(format string, lowQuality bool) Preset {
	if format == "webm" {
		if lowQuality {
			return Preset{
				Name:    "video-webm-low",
				Version: 1,
				Args: []string{
					"-codec:v", "libvpx",
					"-quality", "best",
					"-b:v", "300k",
					"-qmin", "30", "-qmax", "42",
					"-maxrate", "300k", "-bufsize", "1000k",
					"-vf", "scale='480:trunc(ow/a/2)*2'",
					"-codec:a", "libvorbis",
					"-b:a", "48k", "-ar", "44100",
				},
				Ext: "webm",
			}
		}
		return Preset{
			Name:    "video-webm-high",
			Version: 1,
			Args: []string{
				"-codec:v", "libvpx",
				"-quality", "best",
				"-crf", "10", "-b:v", "1M",
				"-codec:a", "libvorbis",
				"-b:a", "128k", "-ar", "44100",
			},
			Ext: "webm",
		}
	}
	if lowQuality {
		return Preset{
			Name:    "video-mp4-low",
			Version: 1,
			Args: []string{
				"-codec:v", "libx264",
				"-b:v", "300k",
				"-maxrate", "300k", "-bufsize", "1000k",
				"-vf", "scale='480:trunc(ow/a/2)*2'",
				"-codec:a", "aac",
				"-b:a", "48k", "-ar", "44100",
				"-movflags", "+faststart",
			},
			Ext: "mp4",
		}
	}
	return Preset{
		Name:    "video-mp4-high",
		Version: 1,
		Args: []string{
			"-codec:v", "libx264",
			"-crf", "23",
			"-codec:a", "aac",
			"-b:a", "128k", "-ar", "44100",
			"-movflags", "+faststart",
		},
		Ext: "mp4",
	}
}

// ThumbnailPreset returns the preset normalizing thumbnails to a small webp.
func ThumbnailPreset() Preset {
	return Preset{
		Name:    "thumbnail-webp",
		Version: 1,
		Args: []string{
			"-vf", "scale=480:-1",
			"-quality", "60",
		},
		Ext: "webp",
	}
}
