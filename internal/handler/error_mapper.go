package handler

import (
	"errors"

	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Business outcomes never reach here; they travel in model.Result.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// ===== Validation Errors → 400 =====
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return model.NewValidationError(verr.Errors)
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		problem := model.NewUnauthorizedError(err.Error())
		problem.Code = model.ErrCodeLoginFailed
		return problem
	case errors.Is(err, service.ErrUnauthenticated):
		return model.NewUnauthorizedError("authentication required")

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotHost):
		problem := model.NewForbiddenError(err.Error())
		problem.Code = model.ErrCodeNotHost
		return problem

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrActivityNotFound):
		return model.NewNotFoundError("activity")

	// ===== Default → 500 =====
	// ErrCallerNotFound lands here: a valid token for a deleted account is a
	// server-side inconsistency, not a client mistake.
	default:
		return model.NewInternalError("")
	}
}
