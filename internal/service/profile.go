package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/forgo/huddle/api/internal/cache"
	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
)

// Failure message returned when an edit writes nothing
const msgProfileUpdateFailed = "Problem updating profile"

// ProfileUserRepository defines the user storage the profile use cases need
type ProfileUserRepository interface {
	UserLookup
	UpdateProfile(ctx context.Context, id, displayName string, bio *string) (int64, error)
}

// ProfileActivityRepository defines the attendance queries behind a profile
type ProfileActivityRepository interface {
	ListActivities(ctx context.Context, username string, predicate model.ActivityPredicate, now time.Time) ([]model.UserActivity, error)
	CountActivities(ctx context.Context, username string) (int64, error)
}

// ProfileCache caches profile projections by username
type ProfileCache interface {
	Get(ctx context.Context, username string, load cache.LoadFunc) (*model.Profile, error)
	Invalidate(ctx context.Context, username string) error
}

// ProfileService handles profile business logic
type ProfileService struct {
	users      ProfileUserRepository
	activities ProfileActivityRepository
	cache      ProfileCache
	accessor   UserAccessor
	now        func() time.Time
}

// ProfileServiceConfig holds configuration for the profile service
type ProfileServiceConfig struct {
	Users      ProfileUserRepository
	Activities ProfileActivityRepository
	Cache      ProfileCache // optional
	Accessor   UserAccessor
	Now        func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(cfg ProfileServiceConfig) *ProfileService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ProfileService{
		users:      cfg.Users,
		activities: cfg.Activities,
		cache:      cfg.Cache,
		accessor:   cfg.Accessor,
		now:        now,
	}
}

// Edit merges the supplied fields into the caller's profile. Omitted or null
// fields keep their stored values.
func (s *ProfileService) Edit(ctx context.Context, req model.EditProfileRequest) (model.Result[model.Unit], error) {
	user, err := currentUser(ctx, s.accessor, s.users)
	if err != nil {
		return model.Result[model.Unit]{}, err
	}

	displayName := *req.DisplayName.Coalesce(&user.DisplayName)
	bio := req.Bio.Coalesce(user.Bio)

	rows, err := s.users.UpdateProfile(ctx, user.ID, displayName, bio)
	if err != nil {
		return model.Result[model.Unit]{}, err
	}
	if rows == 0 {
		return model.Failure[model.Unit](msgProfileUpdateFailed), nil
	}

	s.invalidate(ctx, user.UserName)
	return model.Success(model.Unit{}), nil
}

// Details returns the public profile for a username
func (s *ProfileService) Details(ctx context.Context, q model.ProfileDetailsQuery) (model.Result[*model.Profile], error) {
	var (
		profile *model.Profile
		err     error
	)
	if s.cache != nil {
		profile, err = s.cache.Get(ctx, q.Username, s.load)
	} else {
		profile, err = s.load(ctx, q.Username)
	}

	if errors.Is(err, database.ErrNotFound) {
		return model.NotFound[*model.Profile](), nil
	}
	if err != nil {
		return model.Result[*model.Profile]{}, err
	}
	return model.Success(profile), nil
}

func (s *ProfileService) load(ctx context.Context, username string) (*model.Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	count, err := s.activities.CountActivities(ctx, username)
	if err != nil {
		return nil, err
	}
	return model.NewProfile(user, count), nil
}

// ListActivities returns a user's activities for the requested predicate,
// ordered by date. An unknown username yields an empty list.
func (s *ProfileService) ListActivities(ctx context.Context, q model.ListActivitiesQuery) (model.Result[[]model.UserActivity], error) {
	activities, err := s.activities.ListActivities(ctx, q.Username, q.EffectivePredicate(), s.now())
	if err != nil {
		return model.Result[[]model.UserActivity]{}, err
	}
	return model.Success(activities), nil
}

// invalidate drops a cached profile. The write already succeeded, so a cache
// failure only shortens freshness until the entry expires.
func (s *ProfileService) invalidate(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, username); err != nil {
		slog.WarnContext(ctx, "failed to invalidate cached profile", "username", username, "error", err)
	}
}
