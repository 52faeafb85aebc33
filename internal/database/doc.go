// Package database opens and migrates the relational store behind Huddle.
//
// The store is accessed exclusively through GORM. Two drivers are supported:
// postgres for deployed environments and sqlite for local development and
// tests. Both use a deterministic, case-sensitive comparison for the
// users.user_name column, so username lookups are exact byte matches.
//
// # Error Handling
//
// GORM errors are translated to package sentinels so repositories never leak
// driver types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
//
// # Usage Example
//
//	db, err := database.Open(database.Config{Driver: "postgres", URL: dsn, Logger: logger})
//	if err != nil { ... }
//	defer database.Close(db)
//	if err := database.Migrate(db); err != nil { ... }
package database
