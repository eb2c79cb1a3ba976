package notify

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder for embedded covers
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

const thumbnailSize = 128

// writeThumbnail scales an embedded cover down to a notification icon and
// writes it as PNG to path.
func writeThumbnail(data []byte, path string) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode cover: %w", err)
	}
	thumb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := png.Encode(f, thumb); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
