package testutil

import (
	"path/filepath"
	"testing"

	"github.com/warrenhq/warren/internal"
)

// OpenTestStore creates a store in a per-test temporary directory. The store
// is closed automatically when the test finishes.
func OpenTestStore(t *testing.T) *internal.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warren.db")
	store, err := internal.OpenStore(path)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewTestRepository creates a repository over a fresh temporary store.
func NewTestRepository(t *testing.T) *internal.Repository {
	t.Helper()
	return internal.NewRepository(OpenTestStore(t))
}
