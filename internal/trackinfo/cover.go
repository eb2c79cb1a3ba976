package trackinfo

import (
	"os"
	"path/filepath"
	"strings"
)

// coverNames lists common album art file names in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindCoverFile looks for an album art file next to the track, ignoring
// case. It returns "" when there is none.
func FindCoverFile(trackPath string) string {
	if trackPath == "" {
		return ""
	}
	dir := filepath.Dir(trackPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	found := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			found[strings.ToLower(e.Name())] = e.Name()
		}
	}
	for _, name := range coverNames {
		if real, ok := found[name]; ok {
			return filepath.Join(dir, real)
		}
	}
	return ""
}
