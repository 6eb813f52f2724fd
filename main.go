package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/remeh/sizedwaitgroup"

	"osutimeline/dotosu"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	config, err := ParseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		PrintUsage(stderr)
		return 2
	}
	if config.ShowHelp {
		PrintUsage(stdout)
		return 0
	}
	if err := InitLogger(config.LogLevel, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	var store *Store
	if config.CachePath != "" {
		store, err = OpenStore(config.CachePath)
		if err != nil {
			GetLogger().Error("cache unavailable", "err", err)
			return 1
		}
		defer store.Close()
	}

	paths, failed := ResolveInputs(ctx, config, store)
	for _, loaded := range OpenSet(ctx, paths, config.Jobs, store) {
		if loaded.Err != nil {
			Fail(ctx, store, loaded.Path, loaded.Err)
			failed++
			continue
		}
		if err := WriteReport(stdout, loaded.Path, loaded.Beatmap, config.ShowEvents); err != nil {
			GetLogger().Error("report failed", "path", loaded.Path, "err", err)
			return 1
		}
		if config.Play {
			err := Play(ctx, NewSong(loaded.Beatmap), config.Speed, 10*time.Millisecond, func(ms int, ev dotosu.HitEvent) {
				fmt.Fprintf(stdout, "%8d  %s\n", ms, ev)
			})
			if err != nil {
				GetLogger().Warn("playback stopped", "path", loaded.Path, "err", err)
				return 1
			}
		}
	}
	if failed > 0 {
		GetLogger().Warn("some beatmaps failed", "failed", failed, "total", len(paths)+failed)
		return 1
	}
	return 0
}

// ResolveInputs expands directories into their .osu files and downloads
// numeric beatmap ids into config.DownloadDir. It returns the paths to decode
// and the number of inputs that could not be resolved.
func ResolveInputs(ctx context.Context, config *Config, store *Store) ([]string, int) {
	var paths []string
	failed := 0
	for _, input := range config.Inputs {
		info, err := os.Stat(input)
		switch {
		case err == nil && info.IsDir():
			found, err := CollectPaths(input)
			if err != nil {
				Fail(ctx, store, input, err)
				failed++
				continue
			}
			paths = append(paths, found...)
		case err == nil:
			paths = append(paths, input)
		default:
			id, convErr := strconv.Atoi(input)
			if convErr != nil || id <= 0 {
				Fail(ctx, store, input, &dotosu.IOError{Path: input, Err: err})
				failed++
				continue
			}
			path, err := FetchBeatmap(ctx, config.DownloadDir, id)
			if err != nil {
				Fail(ctx, store, input, err)
				failed++
				continue
			}
			paths = append(paths, path)
		}
	}
	return paths, failed
}

// CollectPaths walks dir and returns every .osu file in it, sorted.
func CollectPaths(dir string) ([]string, error) {
	var paths []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			GetLogger().Warn("skipping unreadable entry", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".osu") {
			paths = append(paths, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

type Loaded struct {
	Path    string
	Beatmap *dotosu.Beatmap
	Err     error
}

// OpenSet decodes paths with at most jobs decodes in flight. Results keep the
// order of paths.
func OpenSet(ctx context.Context, paths []string, jobs int, store *Store) []Loaded {
	results := make([]Loaded, len(paths))
	wg := sizedwaitgroup.New(jobs)
	for i, path := range paths {
		wg.Add()
		Run(func() {
			defer wg.Done()
			b, err := LoadBeatmap(ctx, store, path)
			results[i] = Loaded{Path: path, Beatmap: b, Err: err}
		})
	}
	wg.Wait()
	return results
}

// LoadBeatmap decodes path, going through the cache when store is set.
func LoadBeatmap(ctx context.Context, store *Store, path string) (*dotosu.Beatmap, error) {
	if store == nil {
		return dotosu.DecodeFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dotosu.IOError{Path: path, Err: err}
	}
	key := ContentKey(data)
	b, ok, err := store.Load(ctx, key)
	switch {
	case err != nil:
		GetLogger().Warn("cache read failed", "path", path, "err", err)
	case ok:
		GetLogger().Debug("cache hit", "path", path, "events", b.Len())
		return b, nil
	}

	b, err = dotosu.Decode(bytes.NewReader(data))
	if err != nil {
		var ioErr *dotosu.IOError
		if errors.As(err, &ioErr) {
			ioErr.Path = path
		}
		return nil, err
	}
	GetLogger().Debug("decoded", "path", path, "events", b.Len(), "lead_in", b.LeadIn())
	if err := store.Save(ctx, key, path, b); err != nil {
		GetLogger().Warn("cache write failed", "path", path, "err", err)
	}
	return b, nil
}
