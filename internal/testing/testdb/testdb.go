package testdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/forgo/huddle/api/internal/database"
)

// TestDB provides an isolated, migrated database for one test.
type TestDB struct {
	DB   *gorm.DB
	Name string
	t    testing.TB
}

var counter atomic.Int64

// uniqueName generates a unique in-memory database name for test isolation
func uniqueName() string {
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter.Add(1))
}

// New creates a new in-memory SQLite database with the schema migrated. The
// database is closed automatically when the test finishes.
func New(t testing.TB) *TestDB {
	t.Helper()

	name := uniqueName()
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("testdb: failed to open: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		t.Fatalf("testdb: migration failed: %v", err)
	}

	tdb := &TestDB{DB: db, Name: name, t: t}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close releases the database. Safe to call more than once.
func (tdb *TestDB) Close() {
	_ = database.Close(tdb.DB)
}

// Context returns a context that is cancelled when the test ends
func (tdb *TestDB) Context() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// Count returns the number of rows in table
func (tdb *TestDB) Count(table string) int64 {
	tdb.t.Helper()
	var n int64
	if err := tdb.DB.Table(table).Count(&n).Error; err != nil {
		tdb.t.Fatalf("testdb: count %s: %v", table, err)
	}
	return n
}
