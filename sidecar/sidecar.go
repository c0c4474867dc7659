// Package sidecar writes lyrics files which live next to their audio files.
package sidecar

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	ExtSynced = ".lrc"
	ExtPlain  = ".txt"
)

// PathFor swaps the audio file's extension for the sidecar one, so the pair
// share a stem. Players and taggers match them up that way.
func PathFor(audioPath string, synced bool) string {
	sideExt := ExtPlain
	if synced {
		sideExt = ExtSynced
	}
	ext := filepath.Ext(audioPath)
	if ext == filepath.Base(audioPath) {
		ext = "" // dotfiles like ".flac" have no stem, keep the whole name
	}
	return strings.TrimSuffix(audioPath, ext) + sideExt
}

// Write replaces any previous sidecar at path. Last writer wins.
func Write(path string, text string) error {
	return os.WriteFile(path, []byte(text), 0644)
}
