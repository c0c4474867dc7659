package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.ayling.dev/lrcside"
	"go.ayling.dev/lrcside/cmd/internal/cmds"
	"go.ayling.dev/lrcside/tags"
	"go.ayling.dev/lrcside/watch"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <path>...\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Watch directories for saved tracks and fetch lyrics for each one as it\n")
		fmt.Fprintf(flag.Output(), "appears or changes.\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer cmds.Logging()()
	var (
		client   = cmds.Lrclib()
		notifs   = cmds.Notifications()
		onWrite  = cmds.OnWrite()
		debounce = flag.Duration("debounce", watch.DefaultDebounce, "wait this long after the last write to a track before looking it up")
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
		OnWrite:       *onWrite,
		Notifications: notifs,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher := watch.Watcher{
		Debounce: *debounce,
		Handler: func(path string) {
			processor.PostSave(tags.SavedFile(path))
		},
	}

	slog.Info("watching", "paths", flag.Args())
	if err := watcher.Watch(ctx, flag.Args()...); err != nil {
		slog.Error("watching paths", "err", err)
		return
	}
	slog.Info("stopping")
}
