package playlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	m3uHeader = "#EXTM3U"
	m3uInfo   = "#EXTINF:"
)

// ReadM3U parses an M3U or extended M3U list. Relative paths are resolved
// against baseDir.
func ReadM3U(r io.Reader, baseDir string) ([]Entry, error) {
	var (
		entries []Entry
		pending *Entry
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimPrefix(line, "\ufeff")
		switch {
		case line == "" || line == m3uHeader:
			continue
		case strings.HasPrefix(line, m3uInfo):
			e := parseExtInf(strings.TrimPrefix(line, m3uInfo))
			pending = &e
			continue
		case strings.HasPrefix(line, "#"):
			continue
		}

		e := Entry{}
		if pending != nil {
			e = *pending
			pending = nil
		}
		e.Path = resolve(line, baseDir)
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read m3u: %w", err)
	}
	return entries, nil
}

// parseExtInf parses "<secs>,<artist> - <title>".
func parseExtInf(s string) Entry {
	var e Entry
	secs, name, ok := strings.Cut(s, ",")
	if !ok {
		return e
	}
	if n, err := strconv.Atoi(strings.TrimSpace(secs)); err == nil && n > 0 {
		e.Duration = time.Duration(n) * time.Second
	}
	if artist, title, ok := strings.Cut(name, " - "); ok {
		e.Artist = strings.TrimSpace(artist)
		e.Title = strings.TrimSpace(title)
	} else {
		e.Title = strings.TrimSpace(name)
	}
	return e
}

func resolve(path, baseDir string) string {
	if filepath.IsAbs(path) || baseDir == "" || strings.Contains(path, "://") {
		return path
	}
	return filepath.Join(baseDir, path)
}

// WriteM3U writes entries as an extended M3U list.
func WriteM3U(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, m3uHeader)
	for _, e := range entries {
		secs := -1
		if e.Duration > 0 {
			secs = int(e.Duration.Round(time.Second) / time.Second)
		}
		name := e.Title
		if e.Artist != "" {
			name = e.Artist + " - " + e.Title
		}
		if name == "" {
			name = filepath.Base(e.Path)
		}
		fmt.Fprintf(bw, "%s%d,%s\n", m3uInfo, secs, name)
		fmt.Fprintln(bw, e.Path)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write m3u: %w", err)
	}
	return nil
}

// LoadFile reads an M3U file from disk.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()
	return ReadM3U(f, filepath.Dir(path))
}

// SaveFile writes entries to path, replacing any existing file.
func SaveFile(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}
	if err := WriteM3U(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
