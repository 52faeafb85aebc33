// Package fixtures provides test data factories.
//
// Each factory method inserts an entity through GORM with sensible defaults
// and accepts option functions for customization:
//
//	f := fixtures.New(tdb.DB)
//	alice := f.CreateUser(t, fixtures.WithUsername("alice"))
//	quiz := f.CreateActivity(t, alice, fixtures.WithDate(tomorrow))
//	f.AddAttendee(t, quiz, bob)
package fixtures
