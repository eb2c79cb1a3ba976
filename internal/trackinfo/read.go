package trackinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// ReadFile reads tag metadata from a music file. Stream properties
// (length, sample rate) are filled by the player once the file is decoded.
// Files without readable tags still yield Path and FileType.
func ReadFile(path string) (Fields, error) {
	f := Fields{
		Path:     path,
		FileType: strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")),
	}

	file, err := os.Open(path)
	if err != nil {
		return f, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		// untagged file: keep what the path tells us
		return f, nil
	}

	f.Title = m.Title()
	f.Artist = m.Artist()
	f.AlbumArtist = m.AlbumArtist()
	if f.AlbumArtist == "" {
		f.AlbumArtist = f.Artist
	}
	f.Album = m.Album()
	f.Genre = m.Genre()
	f.Year = m.Year()
	f.TrackNumber, _ = m.Track()
	f.DiscNumber, _ = m.Disc()
	if ft := m.FileType(); ft != tag.UnknownFileType {
		f.FileType = string(ft)
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		f.Cover = pic.Data
		f.CoverMIME = pic.MIMEType
	}
	return f, nil
}
