package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// TrackInfo is what the UI shows about the loaded file.
type TrackInfo struct {
	Title  string
	Artist string
	Album  string
}

// ReadTrackInfo pulls ID3v2 tags when present. Untagged files fall
// back to the bare file name as the title.
func ReadTrackInfo(path string) TrackInfo {
	base := filepath.Base(path)
	info := TrackInfo{Title: strings.TrimSuffix(base, filepath.Ext(base))}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return info
	}
	defer tag.Close()

	if t := strings.TrimSpace(tag.Title()); t != "" {
		info.Title = t
	}
	info.Artist = strings.TrimSpace(tag.Artist())
	info.Album = strings.TrimSpace(tag.Album())
	return info
}
