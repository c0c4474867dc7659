// Package testcmds provides extra commands for binary testscripts.
package testcmds

import (
	"embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

//go:embed testdata/responses
var responses embed.FS

// RegisterTransport points lrclib at a bundled copy of its responses so that
// scripts never touch the network.
func RegisterTransport() {
	var t http.Transport
	t.RegisterProtocol("file", http.NewFileTransportFS(responses))

	os.Setenv("LRCSIDE_LRCLIB_BASE_URL", "file:///testdata/responses/lrclib")
	os.Setenv("LRCSIDE_LRCLIB_RATE_LIMIT", "0")
	os.Setenv("LRCSIDE_LRCLIB_INSECURE", "false")

	http.DefaultTransport = &t
}

//go:embed testdata/track.flac
var trackFlac []byte

//go:embed testdata/empty.flac
var emptyFlac []byte

// Track writes a small tagged flac to each given path, or one with no tags at
// all when -empty is given.
func Track() {
	empty := flag.Bool("empty", false, "")
	flag.Parse()

	data := trackFlac
	if *empty {
		data = emptyFlac
	}

	for _, p := range flag.Args() {
		if err := writeTrack(p, data); err != nil {
			log.Fatalf("write track: %v", err)
		}
	}
}

func writeTrack(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("make parents: %w", err)
	}
	if err := os.WriteFile(path, data, 0666); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
