package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
)

const (
	msgActivityUpdateFailed   = "Failed to update activity"
	msgAttendanceUpdateFailed = "Problem updating attendance"
	msgActivityCancelled      = "Activity is cancelled"

	defaultActivityListLimit = 50
)

// ActivityRepository defines the interface for activity storage
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity, hostID string) error
	GetByID(ctx context.Context, id string) (*model.Activity, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Activity, error)
	Update(ctx context.Context, req model.ActivityRequest) (int64, error)
	SetCancelled(ctx context.Context, id string, cancelled bool) (int64, error)
	AddAttendee(ctx context.Context, activityID, userID string) error
	RemoveAttendee(ctx context.Context, activityID, userID string) (int64, error)
}

// ActivityService handles activity business logic
type ActivityService struct {
	activities ActivityRepository
	users      UserLookup
	cache      ProfileCache
	accessor   UserAccessor
	now        func() time.Time
}

// ActivityServiceConfig holds configuration for the activity service
type ActivityServiceConfig struct {
	Activities ActivityRepository
	Users      UserLookup
	Cache      ProfileCache // optional; attendance changes invalidate profile counts
	Accessor   UserAccessor
	Now        func() time.Time
}

// NewActivityService creates a new activity service
func NewActivityService(cfg ActivityServiceConfig) *ActivityService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ActivityService{
		activities: cfg.Activities,
		users:      cfg.Users,
		cache:      cfg.Cache,
		accessor:   cfg.Accessor,
		now:        now,
	}
}

// List returns upcoming activities, soonest first
func (s *ActivityService) List(ctx context.Context, req model.ListActivitiesRequest) (model.Result[[]model.ActivityDto], error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultActivityListLimit
	}

	activities, err := s.activities.ListUpcoming(ctx, s.now(), limit)
	if err != nil {
		return model.Result[[]model.ActivityDto]{}, err
	}

	dtos := make([]model.ActivityDto, 0, len(activities))
	for i := range activities {
		dtos = append(dtos, model.NewActivityDto(&activities[i]))
	}
	return model.Success(dtos), nil
}

// Details returns one activity with its attendees
func (s *ActivityService) Details(ctx context.Context, q model.ActivityIDQuery) (model.Result[*model.ActivityDto], error) {
	activity, err := s.activities.GetByID(ctx, q.ID)
	if errors.Is(err, database.ErrNotFound) {
		return model.NotFound[*model.ActivityDto](), nil
	}
	if err != nil {
		return model.Result[*model.ActivityDto]{}, err
	}
	dto := model.NewActivityDto(activity)
	return model.Success(&dto), nil
}

// Create schedules a new activity hosted by the caller
func (s *ActivityService) Create(ctx context.Context, req model.ActivityRequest) (model.Result[*model.ActivityDto], error) {
	host, err := currentUser(ctx, s.accessor, s.users)
	if err != nil {
		return model.Result[*model.ActivityDto]{}, err
	}

	req = req.Trimmed()
	activity := &model.Activity{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
		City:        req.City,
		Venue:       req.Venue,
	}
	if err := s.activities.Create(ctx, activity, host.ID); err != nil {
		return model.Result[*model.ActivityDto]{}, err
	}
	s.invalidate(ctx, host.UserName)

	return s.Details(ctx, model.ActivityIDQuery{ID: activity.ID})
}

// Update edits an activity. Only its host may do so.
func (s *ActivityService) Update(ctx context.Context, req model.ActivityRequest) (model.Result[model.Unit], error) {
	caller, err := currentUser(ctx, s.accessor, s.users)
	if err != nil {
		return model.Result[model.Unit]{}, err
	}

	activity, err := s.activities.GetByID(ctx, req.ID)
	if errors.Is(err, database.ErrNotFound) {
		return model.NotFound[model.Unit](), nil
	}
	if err != nil {
		return model.Result[model.Unit]{}, err
	}
	if host := activity.Host(); host == nil || host.UserID != caller.ID {
		return model.Result[model.Unit]{}, ErrNotHost
	}

	rows, err := s.activities.Update(ctx, req.Trimmed())
	if err != nil {
		return model.Result[model.Unit]{}, err
	}
	if rows == 0 {
		return model.Failure[model.Unit](msgActivityUpdateFailed), nil
	}
	return model.Success(model.Unit{}), nil
}

// Attend toggles the caller's participation. For the host it toggles
// whether the activity is cancelled.
func (s *ActivityService) Attend(ctx context.Context, q model.ActivityIDQuery) (model.Result[model.Unit], error) {
	caller, err := currentUser(ctx, s.accessor, s.users)
	if err != nil {
		return model.Result[model.Unit]{}, err
	}

	activity, err := s.activities.GetByID(ctx, q.ID)
	if errors.Is(err, database.ErrNotFound) {
		return model.NotFound[model.Unit](), nil
	}
	if err != nil {
		return model.Result[model.Unit]{}, err
	}

	var rows int64
	switch role := roleOf(activity, caller.ID); role {
	case model.RoleHost:
		rows, err = s.activities.SetCancelled(ctx, activity.ID, !activity.IsCancelled)
	case model.RoleAttendee:
		rows, err = s.activities.RemoveAttendee(ctx, activity.ID, caller.ID)
	default:
		if activity.IsCancelled {
			return model.Failure[model.Unit](msgActivityCancelled), nil
		}
		err = s.activities.AddAttendee(ctx, activity.ID, caller.ID)
		rows = 1
	}
	if errors.Is(err, database.ErrDuplicate) {
		// A concurrent request already joined.
		err, rows = nil, 1
	}
	if err != nil {
		return model.Result[model.Unit]{}, err
	}
	if rows == 0 {
		return model.Failure[model.Unit](msgAttendanceUpdateFailed), nil
	}

	s.invalidate(ctx, caller.UserName)
	return model.Success(model.Unit{}), nil
}

func roleOf(activity *model.Activity, userID string) model.AttendeeRole {
	for _, a := range activity.Attendees {
		if a.UserID == userID {
			return a.Role
		}
	}
	return ""
}

func (s *ActivityService) invalidate(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, username); err != nil {
		slog.WarnContext(ctx, "failed to invalidate cached profile", "username", username, "error", err)
	}
}
