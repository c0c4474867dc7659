package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.senan.xyz/natcmp"
	"go.senan.xyz/table/table"

	"go.ayling.dev/lrcside"
	"go.ayling.dev/lrcside/cmd/internal/cmds"
	"go.ayling.dev/lrcside/lrclib"
	"go.ayling.dev/lrcside/notifications"
	"go.ayling.dev/lrcside/tags"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <path>...\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Fetch lyrics for the given tracks, or for everything below the given\n")
		fmt.Fprintf(flag.Output(), "directories, and write them to sidecar files.\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer cmds.Logging()()
	var (
		client  = cmds.Lrclib()
		notifs  = cmds.Notifications()
		onWrite = cmds.OnWrite()
		dryRun  = flag.Bool("dry-run", false, "look up lyrics but don't write anything")
	)
	cmds.FlagParse()
	cmds.WrapClient()
	cmds.WarnInsecure(client)

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "no paths provided\n")
		fmt.Fprintln(os.Stderr)
		flag.Usage()
		os.Exit(1)
	}

	processor := lrcside.Processor{
		Source:        client,
		DryRun:        *dryRun,
		OnWrite:       *onWrite,
		Notifications: notifs,
	}

	paths := make(chan string)
	go func() {
		for _, p := range flag.Args() {
			if err := iterFiles(p, func(path string) { paths <- path }); err != nil {
				slog.Error("walking paths", "path", p, "err", err)
				continue
			}
		}
		close(paths)
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	type result struct {
		path, status string
	}
	var results []result
	var resultsMu sync.Mutex
	addResult := func(path, status string) {
		resultsMu.Lock()
		defer resultsMu.Unlock()
		results = append(results, result{path, status})
	}

	var wroteN, errN atomic.Uint32
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case path, ok := <-paths:
					if !ok {
						return
					}
					r, err := processor.Process(ctx, tags.SavedFile(path))
					switch {
					case errors.Is(err, context.Canceled):
						return
					case errors.Is(err, lrcside.ErrIncompleteTags):
						addResult(path, "skipped, tags incomplete")
					case errors.Is(err, lrclib.ErrNotFound):
						addResult(path, "no lyrics found")
					case err != nil:
						slog.ErrorContext(ctx, "processing track", "path", path, "err", err)
						addResult(path, "error")
						errN.Add(1)
					default:
						status := "wrote"
						if *dryRun {
							status = "would write"
						}
						addResult(path, status+" "+filepath.Base(r.Sidecar))
						wroteN.Add(1)
					}
				}
			}
		}()
	}

	wg.Wait()

	slices.SortFunc(results, func(a, b result) int {
		return natcmp.Compare(a.path, b.path)
	})

	if len(results) > 0 {
		t := table.NewStringWriter()
		for _, r := range results {
			fmt.Fprintf(t, "%s\t%s\n", r.path, r.status)
		}
		for _, row := range strings.Split(strings.TrimRight(t.String(), "\n"), "\n") {
			fmt.Println(row)
		}
	}

	slog := slog.With("took", time.Since(start), "tracks", len(results), "wrote", wroteN.Load(), "errs", errN.Load())
	if errN.Load() > 0 {
		notifs.Send(ctx, notifications.SyncError, "lyrics sync finished with errors")
		slog.Error("sync finished with errors")
		return
	}
	notifs.Send(ctx, notifications.SyncComplete, "lyrics sync finished")
	slog.Info("sync finished")
}

// iterFiles recurses into dirs taking only what looks like audio, non dir
// paths are taken directly so odd extensions still work when asked for.
func iterFiles(p string, f func(path string)) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		f(p)
		return nil
	}

	return filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !tags.CanRead(path) {
			return nil
		}
		f(path)
		return nil
	})
}
