package main

import (
	"bytes"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func TestParseArgs_ValidArgs(t *testing.T) {
	t.Setenv("OSU_LOG_LEVEL", "")
	t.Setenv("OSU_CACHE", "")
	t.Setenv("OSU_SONGS_DIR", "")

	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name: "defaults",
			args: []string{"map.osu"},
			expected: Config{
				Inputs:      []string{"map.osu"},
				LogLevel:    "info",
				DownloadDir: "songs",
				Jobs:        runtime.NumCPU(),
				Speed:       1,
			},
		},
		{
			name: "flags after inputs",
			args: []string{"a.osu", "-events", "123", "-jobs", "3", "-cache", "c.db"},
			expected: Config{
				Inputs:      []string{"a.osu", "123"},
				LogLevel:    "info",
				CachePath:   "c.db",
				DownloadDir: "songs",
				Jobs:        3,
				ShowEvents:  true,
				Speed:       1,
			},
		},
		{
			name: "play",
			args: []string{"--play", "--speed", "2.5", "--log-level", "debug", "-dir", "maps", "x"},
			expected: Config{
				Inputs:      []string{"x"},
				LogLevel:    "debug",
				DownloadDir: "maps",
				Jobs:        runtime.NumCPU(),
				Play:        true,
				Speed:       2.5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*config, tt.expected) {
				t.Errorf("config = %+v, want %+v", *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_Env(t *testing.T) {
	t.Setenv("OSU_LOG_LEVEL", "WARN")
	t.Setenv("OSU_CACHE", "env.db")
	t.Setenv("OSU_SONGS_DIR", "env-songs")

	config, err := ParseArgs([]string{"map.osu"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.LogLevel != "warn" || config.CachePath != "env.db" || config.DownloadDir != "env-songs" {
		t.Errorf("env not applied: %+v", *config)
	}

	config, err = ParseArgs([]string{"-log-level", "error", "-cache", "", "map.osu"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.LogLevel != "error" || config.CachePath != "" {
		t.Errorf("flags should win over env: %+v", *config)
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	t.Setenv("OSU_LOG_LEVEL", "")

	tests := []struct {
		name string
		args []string
	}{
		{"no inputs", []string{}},
		{"bad log level", []string{"-log-level", "loud", "m.osu"}},
		{"zero jobs", []string{"-jobs", "0", "m.osu"}},
		{"negative speed", []string{"-speed", "-1", "m.osu"}},
		{"unknown flag", []string{"-nope", "m.osu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseArgs(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}} {
		config, err := ParseArgs(args)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", args, err)
		}
		if !config.ShowHelp {
			t.Errorf("%v: ShowHelp = false", args)
		}
	}

	var buf bytes.Buffer
	PrintUsage(&buf)
	if !strings.Contains(buf.String(), "-cache") {
		t.Errorf("usage does not list flags:\n%s", buf.String())
	}
}
