// Package model defines domain entities, request objects and error types for
// the Huddle API.
//
// # Domain Entities
//
//   - User: account with display name, bio and photos
//   - Photo: image owned by a user
//   - Activity: scheduled gathering with attendee links
//   - ActivityAttendee: user/activity link carrying a host or attendee role
//
// Entities carry GORM tags and are persisted as-is by the repository package.
//
// # Requests and Results
//
// Every request object implements Validatable. The service pipeline runs
// Validate before the use case and turns failures into *ValidationError.
// Use cases return Result[T]:
//
//	model.Success(profile)           // 200 with body
//	model.Success(model.Unit{})      // 200 without body
//	model.NotFound[*model.Profile]() // 404
//	model.Failure[model.Unit]("Problem updating profile") // 400
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go.
package model
