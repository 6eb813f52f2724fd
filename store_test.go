package main

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"osutimeline/dotosu"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	b, err := dotosu.Decode(strings.NewReader(testMap))
	if err != nil {
		t.Fatal(err)
	}
	key := ContentKey([]byte(testMap))

	if _, ok, err := store.Load(ctx, key); err != nil || ok {
		t.Fatalf("Load before Save: ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, key, "a.osu", b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// saving again replaces rather than duplicates the events
	if err := store.Save(ctx, key, "b.osu", b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Errorf("Load = %+v, want %+v", got, b)
	}
}

func TestStore_Failures(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	Fail(ctx, store, "bad.osu", &dotosu.MalformedLineError{Line: 3, Section: "HitObjects", Reason: "time is not an integer"})
	Fail(ctx, nil, "ignored.osu", dotosu.ErrEmptyBeatmap)

	failures, err := store.Failures(ctx)
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(failures))
	}
	if failures[0].Path != "bad.osu" || !strings.Contains(failures[0].Reason, "line 3") {
		t.Errorf("failure = %+v", failures[0])
	}
}

func TestContentKey(t *testing.T) {
	if ContentKey([]byte("a")) == ContentKey([]byte("b")) {
		t.Error("different contents share a key")
	}
	if len(ContentKey(nil)) != 64 {
		t.Errorf("key length = %d, want 64", len(ContentKey(nil)))
	}
}
