package testsupport

import (
	"context"
	"testing"

	"speechcrawler/internal/config"
	"speechcrawler/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedQuery inserts a search query for tests using the provided store.
func SeedQuery(t testing.TB, st *store.Store, query string) {
	t.Helper()

	if _, err := st.AddSearchQuery(context.Background(), query); err != nil {
		t.Fatalf("store.AddSearchQuery: %v", err)
	}
}

// SeedMedia inserts a media item for tests using the provided store.
func SeedMedia(t testing.TB, st *store.Store, mediaID, channelID string) {
	t.Helper()

	if err := st.AddMediaItem(context.Background(), mediaID, channelID, nil); err != nil {
		t.Fatalf("store.AddMediaItem: %v", err)
	}
}
