package sidecar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.ayling.dev/lrcside/sidecar"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/music/a/Song.lrc", sidecar.PathFor("/music/a/Song.flac", true))
	assert.Equal(t, "/music/a/Song.txt", sidecar.PathFor("/music/a/Song.flac", false))
	assert.Equal(t, "/music/b/01 - Track.lrc", sidecar.PathFor("/music/b/01 - Track.mp3", true))
	assert.Equal(t, "/music/c/noext.txt", sidecar.PathFor("/music/c/noext", false))
	assert.Equal(t, "/music/d/Song.v2.lrc", sidecar.PathFor("/music/d/Song.v2.opus", true))
	assert.Equal(t, "/music/e/.flac.lrc", sidecar.PathFor("/music/e/.flac", true))
	assert.Equal(t, "/music/e/.flac.txt", sidecar.PathFor("/music/e/.flac", false))
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Song.lrc")

	require.NoError(t, sidecar.Write(path, "[00:01.00] first version\n"))
	require.NoError(t, sidecar.Write(path, "[00:01.00] second version\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[00:01.00] second version\n", string(data))
}

func TestWriteUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Song.txt")

	const text = "Tiocfaidh grá na gréine ort\n春の夜の夢\n"
	require.NoError(t, sidecar.Write(path, text))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}
