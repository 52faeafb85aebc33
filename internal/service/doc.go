// Package service implements the use cases of the Huddle API.
//
// Every use case is a method with the shape
//
//	func (s *XxxService) Op(ctx context.Context, req model.SomeRequest) (model.Result[T], error)
//
// and is invoked through Send, which validates the request, opens a trace
// span and logs the outcome before the method runs. A use case reports
// business outcomes in the Result (Success, NotFound or Failure) and
// returns a non-nil error only for faults: a *model.ValidationError from
// Send, one of the sentinels in errors.go, or an unexpected store error.
//
// # Service Pattern
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Services define the narrow repository interfaces they need
//   - The caller's identity comes from a UserAccessor, never from the request body
//
// # Example Usage
//
//	profiles := NewProfileService(ProfileServiceConfig{
//	    Users:      userRepository,
//	    Activities: profileRepository,
//	    Accessor:   middleware.ContextUserAccessor{},
//	})
//	res, err := Send(ctx, "profiles.details", model.ProfileDetailsQuery{Username: "bob"}, profiles.Details)
package service
