package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ndewijer/psx-portfolio-tracker/internal/database"
	"github.com/ndewijer/psx-portfolio-tracker/internal/logging"
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The schema comes from the embedded migrations, so tests run against the
// same tables as production. The database is closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when the single connection closes)
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := database.Migrate(context.Background(), db, logging.Nop()); err != nil {
		db.Close()
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CleanDatabase removes all data from all tables while preserving the schema.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t)
//	// ... test code that creates data ...
//	testutil.CleanDatabase(t, db)
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Children before parents
	tables := []string{
		"trade",
		"portfolio",
		"last_price",
	}

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}

// AssertRowCount fails the test if table does not hold expected rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	if count := CountRows(t, db, table); count != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, count)
	}
}
