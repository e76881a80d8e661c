package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shareef12/slackmoji-uploader/internal/database"
)

// TestDB opens a migrated ledger database in a test temp dir. The database
// is closed and removed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("db.Migrate() error = %v", err)
	}

	return db.DB
}
