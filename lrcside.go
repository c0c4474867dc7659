package lrcside

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.ayling.dev/lrcside/hook"
	"go.ayling.dev/lrcside/lrclib"
	"go.ayling.dev/lrcside/notifications"
	"go.ayling.dev/lrcside/sidecar"
)

var ErrIncompleteTags = errors.New("incomplete tags")

// Snapshot holds the tag values of interest at the moment a file was saved.
// It is read once, the lookup never goes back to the file.
type Snapshot struct {
	Title  string
	Artist string
	Album  string
	Length string // "mm:ss", empty when unknown
}

// File is a just-saved audio file as the host sees it, its final path plus
// a metadata accessor.
type File interface {
	Path() string
	Snapshot() (Snapshot, error)
}

// Source finds lyrics for a query. *lrclib.Client is the real one.
type Source interface {
	Get(ctx context.Context, q lrclib.Query) (*lrclib.Lyrics, error)
}

// ParseLength converts a "mm:ss" length tag to total whole seconds. Anything
// else, wrong part count, non-numeric or negative parts, empty input, means
// the duration is unknown, which is 0. Never an error.
func ParseLength(s string) int {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0
	}
	mins, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || mins < 0 {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || secs < 0 {
		return 0
	}
	return mins*60 + secs
}

// FormatLength is the inverse, rendering a duration the way hosts format
// their length tags.
func FormatLength(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// BuildQuery makes the lookup query for a snapshot. ok is false when the
// snapshot can't identify a track, that is when title, artist, or a positive
// duration is missing. Album is optional and never blocks a lookup.
func BuildQuery(snap Snapshot) (lrclib.Query, bool) {
	duration := ParseLength(snap.Length)
	if snap.Title == "" || snap.Artist == "" || duration <= 0 {
		return lrclib.Query{}, false
	}
	return lrclib.Query{
		TrackName:  snap.Title,
		ArtistName: snap.Artist,
		AlbumName:  snap.Album,
		Duration:   duration,
	}, true
}

type Processor struct {
	Source        Source
	DryRun        bool
	OnWrite       []*hook.Hook
	Notifications *notifications.Notifications

	wg sync.WaitGroup
}

type Result struct {
	Query   lrclib.Query
	Synced  bool
	Sidecar string
}

// Process runs the pipeline for one file, snapshot to query to lookup to
// sidecar write. The caller decides what failures mean, PostSave is the
// boundary which swallows them.
func (p *Processor) Process(ctx context.Context, f File) (*Result, error) {
	snap, err := f.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	query, ok := BuildQuery(snap)
	if !ok {
		return nil, ErrIncompleteTags
	}
	slog.DebugContext(ctx, "built lyrics query", "path", f.Path(), "query", query.Values().Encode())

	lyrics, err := p.Source.Get(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}

	dest := sidecar.PathFor(f.Path(), lyrics.Synced())
	r := &Result{Query: query, Synced: lyrics.Synced(), Sidecar: dest}
	if p.DryRun {
		return r, nil
	}

	if err := sidecar.Write(dest, lyrics.Text()); err != nil {
		return nil, fmt.Errorf("write sidecar: %w", err)
	}
	for _, h := range p.OnWrite {
		if err := h.Run(ctx, dest); err != nil {
			slog.ErrorContext(ctx, "running on-write hook", "hook", h, "path", dest, "err", err)
		}
	}
	return r, nil
}

// PostSave handles one completed save from the host. It returns right away
// and runs the pipeline on its own goroutine. Nothing that goes wrong in
// there reaches the host, failures end up in the log and the sidecar is
// simply not written. No ordering, no dedupe, last writer wins.
func (p *Processor) PostSave(f File) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "lyrics task panic", "path", f.Path(), "panic", r)
			}
		}()

		r, err := p.Process(ctx, f)
		switch {
		case errors.Is(err, ErrIncompleteTags):
			slog.InfoContext(ctx, "skipping lyrics lookup", "path", f.Path(), "reason", err)
		case errors.Is(err, lrclib.ErrNotFound):
			slog.InfoContext(ctx, "no lyrics found", "path", f.Path())
		case err != nil:
			slog.ErrorContext(ctx, "processing save", "path", f.Path(), "err", err)
		default:
			slog.InfoContext(ctx, "wrote lyrics sidecar", "path", f.Path(), "sidecar", r.Sidecar, "synced", r.Synced)
			p.Notifications.Sendf(ctx, notifications.SidecarWritten, "wrote lyrics for %s", f.Path())
		}
	}()
}

// Wait blocks until handed-off work has finished. Hosts aren't obliged to
// call it, outstanding tasks never hold up process exit.
func (p *Processor) Wait() {
	p.wg.Wait()
}
