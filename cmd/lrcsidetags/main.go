package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.ayling.dev/lrcside"
	"go.ayling.dev/lrcside/cmd/internal/cmds"
	"go.ayling.dev/lrcside/tags"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <path>...\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Print the tags a lyrics lookup would use for each given track, and the\n")
		fmt.Fprintf(flag.Output(), "query they produce. Handy for finding out why a track was skipped.\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer cmds.Logging()()
	cmds.FlagParse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "no paths provided\n")
		fmt.Fprintln(os.Stderr)
		flag.Usage()
		os.Exit(1)
	}

	for _, p := range flag.Args() {
		if err := iterFiles(p, dumpFile); err != nil {
			slog.Error("walking paths", "path", p, "err", err)
			continue
		}
	}
}

func dumpFile(path string) {
	snapshot, err := tags.SavedFile(path).Snapshot()
	if err != nil {
		slog.Error("reading tags", "path", path, "err", err)
		return
	}

	fmt.Printf("%s\tTitle\t%s\n", path, snapshot.Title)
	fmt.Printf("%s\tArtist\t%s\n", path, snapshot.Artist)
	fmt.Printf("%s\tAlbum\t%s\n", path, snapshot.Album)
	fmt.Printf("%s\tLength\t%s\n", path, snapshot.Length)

	query, ok := lrcside.BuildQuery(snapshot)
	if !ok {
		fmt.Printf("%s\tQuery\tnone, tags incomplete\n", path)
		return
	}
	fmt.Printf("%s\tQuery\t%s\n", path, query.Values().Encode())
}

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
