// Package middleware provides HTTP middleware for the Huddle API.
//
// Middleware is composed with Chain, outermost first:
//
//	handler := middleware.Chain(mux,
//		middleware.Recovery,
//		middleware.RequestID,
//		middleware.Tracing("huddle-api"),
//		middleware.Logger,
//		middleware.SecurityHeaders(cfg.IsDevelopment()),
//		middleware.CORS(cfg.Server.AllowedOrigins),
//	)
//
// # Authentication
//
// Auth validates the bearer token and stores the caller's ID and username in the request
// context. Websocket upgrades may pass the token in the access_token query
// parameter instead. Services read the caller through ContextUserAccessor:
//
//	svc := service.NewProfileService(service.ProfileServiceConfig{
//		Accessor: middleware.ContextUserAccessor{},
//	})
//
// # Context Values
//
//   - GetUserID(ctx): authenticated user ID
//   - GetUsername(ctx): authenticated username
//   - GetRequestID(ctx): unique request identifier
package middleware
