// Package tags reads audio file metadata through taglib.
package tags

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sentriz/audiotags"

	"go.ayling.dev/lrcside"
)

const (
	Title  = "title"
	Artist = "artist"
	Album  = "album"
)

func CanRead(absPath string) bool {
	switch ext := strings.ToLower(filepath.Ext(absPath)); ext {
	case ".mp3", ".flac", ".aac", ".m4a", ".m4b", ".ogg", ".opus", ".wma", ".wav", ".wv":
		return true
	}
	return false
}

type File struct {
	raw            map[string][]string
	properties     *audiotags.AudioProperties
	propertiesOnce sync.Once
	file           *audiotags.File
	path           string
}

func Read(path string) (*File, error) {
	f, err := audiotags.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return &File{raw: f.ReadTags(), file: f, path: path}, nil
}

func (f *File) initProperties() {
	f.propertiesOnce.Do(func() {
		f.properties = f.file.ReadAudioProperties()
	})
}

func (f *File) Read(t string) string { return first(f.raw[t]) }

func (f *File) Length() time.Duration {
	f.initProperties()
	return time.Duration(f.properties.LengthMs) * time.Millisecond
}

func (f *File) Close() {
	f.file.Close()
}

func (f *File) Path() string {
	return f.path
}

// SavedFile adapts an on-disk audio file to the host file contract. The tags
// are read lazily at snapshot time, so a lookup sees them as they were
// saved, not as they were when the event fired.
func SavedFile(path string) lrcside.File {
	return savedFile(path)
}

type savedFile string

func (p savedFile) Path() string { return string(p) }

func (p savedFile) Snapshot() (lrcside.Snapshot, error) {
	f, err := Read(string(p))
	if err != nil {
		return lrcside.Snapshot{}, err
	}
	defer f.Close()

	return lrcside.Snapshot{
		Title:  f.Read(Title),
		Artist: f.Read(Artist),
		Album:  f.Read(Album),
		Length: lrcside.FormatLength(f.Length()),
	}, nil
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
