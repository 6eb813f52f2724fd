package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Config holds the command line settings.
type Config struct {
	Inputs      []string // .osu files, directories or beatmap ids
	LogLevel    string
	CachePath   string // sqlite database; empty disables the cache
	DownloadDir string
	Jobs        int
	ShowEvents  bool
	Play        bool
	Speed       float64
	ShowHelp    bool
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func newFlagSet(config *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("osutimeline", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&config.CachePath, "cache", "", "sqlite file caching decoded timelines")
	fs.StringVar(&config.DownloadDir, "dir", "songs", "directory downloaded beatmaps are stored in")
	fs.IntVar(&config.Jobs, "jobs", runtime.NumCPU(), "files decoded in parallel")
	fs.BoolVar(&config.ShowEvents, "events", false, "print every hit event")
	fs.BoolVar(&config.Play, "play", false, "replay each timeline against the song clock")
	fs.Float64Var(&config.Speed, "speed", 1, "playback rate for -play")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (shorthand)")
	return fs
}

// ParseArgs parses args into a Config. Flags and inputs may be interleaved.
// OSU_LOG_LEVEL, OSU_CACHE and OSU_SONGS_DIR apply when the matching flag is
// not given.
func ParseArgs(args []string) (*Config, error) {
	config := &Config{}
	fs := newFlagSet(config)

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				config.ShowHelp = true
				return config, nil
			}
			return nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		config.Inputs = append(config.Inputs, rest[0])
		rest = rest[1:]
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["log-level"] {
		if v := os.Getenv("OSU_LOG_LEVEL"); v != "" {
			config.LogLevel = strings.ToLower(v)
		}
	}
	if !set["cache"] {
		config.CachePath = os.Getenv("OSU_CACHE")
	}
	if !set["dir"] {
		if v := os.Getenv("OSU_SONGS_DIR"); v != "" {
			config.DownloadDir = v
		}
	}

	if config.ShowHelp {
		return config, nil
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", config.LogLevel)
	}
	if config.Jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1, got %d", config.Jobs)
	}
	if config.Speed <= 0 {
		return nil, fmt.Errorf("speed must be positive, got %v", config.Speed)
	}
	if len(config.Inputs) == 0 {
		return nil, errors.New("no beatmap given")
	}
	return config, nil
}

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fs := newFlagSet(&Config{})
	fs.SetOutput(w)
	fmt.Fprintln(w, "usage: osutimeline [flags] <file.osu|dir|beatmap id>...")
	fmt.Fprintln(w)
	fs.PrintDefaults()
}
