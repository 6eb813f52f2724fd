package main

import "context"

// Fail logs a beatmap that could not be loaded and, with a store, records it
// in the failure ledger.
func Fail(ctx context.Context, store *Store, path string, err error) {
	GetLogger().Error("beatmap failed", "path", path, "err", err)
	if store == nil {
		return
	}
	if e := store.RecordFailure(ctx, path, err.Error()); e != nil {
		GetLogger().Warn("could not record failure", "path", path, "err", e)
	}
}
