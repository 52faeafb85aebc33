// Package testdb provides isolated databases for repository, service and
// handler tests.
//
// Each call to New opens a fresh in-memory SQLite database through
// database.Open and applies database.Migrate, so tests exercise the same
// GORM models and constraints as production:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t) // closed on t.Cleanup
//	    repo := repository.NewUserRepository(tdb.DB)
//	}
package testdb
