package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/forgo/huddle/api/internal/model"
)

// ProfileRepository answers the read queries behind a user's public profile
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) attendance(ctx context.Context, username string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("activity_attendees AS aa").
		Joins("JOIN activities a ON a.id = aa.activity_id").
		Joins("JOIN users u ON u.id = aa.user_id").
		Where("u.user_name = ?", username)
}

// ListActivities returns the activities username attends, filtered by
// predicate relative to now and ordered by date ascending. An unknown
// username yields an empty list.
func (r *ProfileRepository) ListActivities(ctx context.Context, username string, predicate model.ActivityPredicate, now time.Time) ([]model.UserActivity, error) {
	q := r.attendance(ctx, username).
		Select("a.id, a.title, a.category, a.date")

	switch predicate {
	case model.PredicatePast:
		q = q.Where("a.date < ?", now.UTC())
	case model.PredicateHost:
		q = q.Where("aa.role = ?", model.RoleHost)
	case model.PredicateFuture, "":
		q = q.Where("a.date >= ?", now.UTC())
	default:
		return nil, fmt.Errorf("unknown activity predicate %q", predicate)
	}

	activities := []model.UserActivity{}
	if err := q.Order("a.date ASC").Scan(&activities).Error; err != nil {
		return nil, fmt.Errorf("list user activities: %w", err)
	}
	return activities, nil
}

// CountActivities returns how many activities username attends or hosts
func (r *ProfileRepository) CountActivities(ctx context.Context, username string) (int64, error) {
	var count int64
	if err := r.attendance(ctx, username).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count user activities: %w", err)
	}
	return count, nil
}
