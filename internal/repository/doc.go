// Package repository implements the data access layer for the Huddle API.
//
// Each repository struct wraps a *gorm.DB and handles the queries for one
// aggregate. Errors coming out of GORM are passed through
// database.TranslateError so callers only ever compare against
// database.ErrNotFound and database.ErrDuplicate.
//
// # Repository Pattern
//
//   - Constructor function (NewXxxRepository) accepts the shared *gorm.DB
//   - Every method takes a context.Context and scopes the query with WithContext
//   - Writes that must report whether anything changed return the affected row count
//   - Times are compared in UTC so the SQLite and Postgres drivers agree
//
// # Example Usage
//
//	repo := NewUserRepository(db)
//	user, err := repo.GetByUsername(ctx, "bob")
//	if err != nil {
//	    if errors.Is(err, database.ErrNotFound) {
//	        // Handle not found
//	    }
//	    return err
//	}
package repository
