package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
)

// UserAccessor resolves the authenticated caller of the current request.
// An empty username means the request is anonymous.
type UserAccessor interface {
	Username(ctx context.Context) string
}

// UserLookup loads users by username
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// currentUser loads the caller. A caller whose account is gone is a fault,
// not a business outcome.
func currentUser(ctx context.Context, accessor UserAccessor, users UserLookup) (*model.User, error) {
	username := accessor.Username(ctx)
	if username == "" {
		return nil, ErrUnauthenticated
	}

	user, err := users.GetByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrCallerNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
