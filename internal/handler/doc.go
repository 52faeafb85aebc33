// Package handler provides HTTP request handlers for the Huddle API.
//
// Every endpoint follows the same shape: bind the request into a model
// request or query, run it through service.Send and hand the outcome to
// HandleResult, which owns the mapping onto HTTP:
//
//   - Success with a value: 200 and the JSON body
//   - Success with model.Unit: 200 and an empty body
//   - NotFound: 404 and an empty body
//   - Failure: 400 problem carrying the failure message
//   - error: MapServiceError, falling back to a generic 500
//
// Errors are RFC 9457 Problem Details documents.
//
// # Example Usage
//
//	router := handler.NewRouter(handler.RouterConfig{
//		Auth:     authService,
//		Profiles: handler.NewProfileHandler(profileService),
//	})
package handler
