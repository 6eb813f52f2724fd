package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/levigross/grequests"
)

// OsuFileURL serves the raw .osu text of one beatmap difficulty.
var OsuFileURL = "https://osu.ppy.sh/osu/%d"

var ErrBeatmapNotFound = errors.New("beatmap not found")

const maxDownloadAttempts = 3

var retryAfter = time.Minute

// DownloadBeatmap fetches the .osu file of beatmap id. Rate limited responses
// are retried after retryAfter.
func DownloadBeatmap(ctx context.Context, id int) ([]byte, error) {
	done := GetToken()
	defer done()

	url := fmt.Sprintf(OsuFileURL, id)
	for attempt := 1; ; attempt++ {
		if err := Throttle(ctx); err != nil {
			return nil, err
		}
		GetLogger().Debug("downloading beatmap", "id", id, "attempt", attempt)
		resp, err := grequests.Get(url, grequests.FromRequestOptions(&grequests.RequestOptions{
			Context:        ctx,
			UserAgent:      "osutimeline",
			RequestTimeout: 2 * time.Minute,
		}))
		if err != nil {
			return nil, fmt.Errorf("download beatmap %d: %w", id, err)
		}
		body := resp.Bytes()
		status := resp.StatusCode
		resp.Close()

		switch {
		case status == http.StatusTooManyRequests && attempt < maxDownloadAttempts:
			GetLogger().Warn("rate limited, backing off", "id", id, "wait", retryAfter)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryAfter):
			}
			continue
		case status == http.StatusNotFound:
			return nil, fmt.Errorf("download beatmap %d: %w", id, ErrBeatmapNotFound)
		case status != http.StatusOK:
			return nil, fmt.Errorf("download beatmap %d: received status %d", id, status)
		case len(body) == 0:
			// unknown ids come back as an empty 200
			return nil, fmt.Errorf("download beatmap %d: %w", id, ErrBeatmapNotFound)
		}
		return body, nil
	}
}

// FetchBeatmap returns the local path of beatmap id under dir, downloading it
// first when it is not there yet.
func FetchBeatmap(ctx context.Context, dir string, id int) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d.osu", id))
	if _, err := os.Stat(path); err == nil {
		GetLogger().Debug("beatmap already downloaded", "id", id, "path", path)
		return path, nil
	}
	data, err := DownloadBeatmap(ctx, id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	GetLogger().Info("beatmap downloaded", "id", id, "path", path, "bytes", len(data))
	return path, nil
}
