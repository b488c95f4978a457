// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/pkg/config"
)

// New opens a private in-memory SQLite database with the schema applied.
// The database is closed when the test finishes.
func New(t testing.TB) *db.DB {
	t.Helper()

	database, err := db.New(&config.DatabaseConfig{URL: "sqlite::memory:"}, "ERROR")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := db.Initialize(context.Background(), database, config.BootstrapConfig{}, nil); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	return database
}
