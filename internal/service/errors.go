package service

import "errors"

// Centralized service layer errors.
// Business outcomes travel in model.Result; these are the faults a handler
// maps onto specific HTTP statuses. Anything else becomes a 500.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCallerNotFound     = errors.New("authenticated user no longer exists")
	ErrUnauthenticated    = errors.New("no authenticated user")
)

// ===== Activity Errors =====
var (
	ErrNotHost          = errors.New("only the host can change this activity")
	ErrActivityNotFound = errors.New("activity not found")
)
