// Command peeler extracts classic Macintosh archive and transport
// encodings (HQX, BIN, SIT, CPT) from files named on the command
// line, writing each decoded entry's data fork to disk and, when it
// carries a resource fork or non-default Finder metadata, a ._
// sidecar file alongside it.
//
// Grounded on original_source/cmd/main.c's contract (read an archive,
// peel all layers, write each extracted file, emit resource forks as
// sidecars) and the teacher's path.go glob-filter idiom, using
// doublestar for the --include pattern.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/macfileformats/peeler"
	"github.com/macfileformats/peeler/internal/decodecache"
	"github.com/macfileformats/peeler/sidecar"
)

func main() {
	outDir := flag.String("out", ".", "directory to write extracted files into")
	include := flag.String("include", "", "only extract entries whose name matches this doublestar glob")
	cacheDir := flag.String("cache", "", "directory for the on-disk decode cache (disabled if empty)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: peeler [-out dir] [-include glob] [-cache dir] <archive>...")
		os.Exit(2)
	}

	var cache *decodecache.Cache
	if *cacheDir != "" {
		c, err := decodecache.Open(*cacheDir, 256)
		if err != nil {
			slog.Error("peeler: opening decode cache", "err", err)
			os.Exit(1)
		}
		cache = c
		defer cache.Close()
	}

	status := 0
	for _, path := range flag.Args() {
		if err := run(path, *outDir, *include, cache); err != nil {
			slog.Error("peeler: extraction failed", "path", path, "err", err)
			status = 1
		}
	}
	os.Exit(status)
}

func run(path, outDir, include string, cache *decodecache.Cache) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	entries, err := decodeWithCache(buf, cache)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if include != "" {
			ok, err := doublestar.Match(include, e.Name)
			if err != nil {
				return fmt.Errorf("bad -include pattern: %w", err)
			}
			if !ok {
				continue
			}
		}
		if err := writeEntry(outDir, e); err != nil {
			return fmt.Errorf("writing %q: %w", e.Name, err)
		}
	}
	return nil
}

func decodeWithCache(buf []byte, cache *decodecache.Cache) ([]peeler.Entry, error) {
	key := decodecache.HashInput(buf)
	if cached, ok := cache.Get(key); ok {
		entries, err := peeler.DecodeEntryList(cached)
		if err == nil {
			return entries, nil
		}
		slog.Warn("peeler: ignoring corrupt cache entry", "err", err)
	}

	entries, err := peeler.Peel(buf)
	if err != nil {
		return nil, err
	}
	if blob, err := peeler.EncodeEntryList(entries); err == nil {
		if err := cache.Put(key, blob); err != nil {
			slog.Warn("peeler: failed to populate decode cache", "err", err)
		}
	}
	return entries, nil
}

func writeEntry(outDir string, e peeler.Entry) error {
	name := e.Name
	if name == "" {
		name = "untitled"
	}
	dest := filepath.Join(outDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, e.Data, 0o644); err != nil {
		return err
	}

	if len(e.Resource) == 0 && e.Type == 0 && e.Creator == 0 && e.Flags == 0 {
		return nil
	}

	side := sidecar.Write(sidecar.FinderInfo{Type: e.Type, Creator: e.Creator, Flags: e.Flags}, e.Resource)
	sideDest := filepath.Join(filepath.Dir(dest), "._"+filepath.Base(dest))
	return os.WriteFile(sideDest, side, 0o644)
}
