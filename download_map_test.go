package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// fakeOsuServer serves testMap for id 1, an empty body for id 2, 404 for
// anything else, and a 429 to the first request for id 3.
func fakeOsuServer(t *testing.T) *atomic.Int32 {
	t.Helper()
	var hits atomic.Int32
	var limited atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/osu/1":
			fmt.Fprint(w, testMap)
		case "/osu/2":
		case "/osu/3":
			if limited.CompareAndSwap(false, true) {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, testMap)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	prevURL, prevRetry, prevLimit := OsuFileURL, retryAfter, limiter.Limit()
	OsuFileURL = srv.URL + "/osu/%d"
	retryAfter = time.Millisecond
	limiter.SetLimit(rate.Inf)
	t.Cleanup(func() {
		OsuFileURL, retryAfter = prevURL, prevRetry
		limiter.SetLimit(prevLimit)
	})
	return &hits
}

func TestDownloadBeatmap(t *testing.T) {
	fakeOsuServer(t)
	ctx := context.Background()

	data, err := DownloadBeatmap(ctx, 1)
	if err != nil {
		t.Fatalf("DownloadBeatmap: %v", err)
	}
	if string(data) != testMap {
		t.Errorf("body = %q", data)
	}

	for _, id := range []int{2, 404} {
		if _, err := DownloadBeatmap(ctx, id); !errors.Is(err, ErrBeatmapNotFound) {
			t.Errorf("id %d: error = %v, want ErrBeatmapNotFound", id, err)
		}
	}
}

func TestDownloadBeatmap_RetriesRateLimit(t *testing.T) {
	hits := fakeOsuServer(t)
	if _, err := DownloadBeatmap(context.Background(), 3); err != nil {
		t.Fatalf("DownloadBeatmap: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}

func TestFetchBeatmap(t *testing.T) {
	hits := fakeOsuServer(t)
	dir := filepath.Join(t.TempDir(), "songs")

	path, err := FetchBeatmap(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("FetchBeatmap: %v", err)
	}
	if path != filepath.Join(dir, "1.osu") {
		t.Errorf("path = %q", path)
	}
	if data, err := os.ReadFile(path); err != nil || string(data) != testMap {
		t.Errorf("stored file = %q, %v", data, err)
	}

	if _, err := FetchBeatmap(context.Background(), dir, 1); err != nil {
		t.Fatalf("second FetchBeatmap: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}
