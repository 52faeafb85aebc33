package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
)

// ActivityRepository handles activity and attendance data access
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// withAttendees preloads attendee links with their users and photos,
// host first
func withAttendees(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Attendees", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderBy{Expression: clause.Expr{
				SQL:  "CASE WHEN role = ? THEN 0 ELSE 1 END, created_at ASC",
				Vars: []any{model.RoleHost},
			}})
		}).
		Preload("Attendees.User").
		Preload("Attendees.User.Photos")
}

// Create inserts an activity and links hostID as its host in one transaction
func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity, hostID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(activity).Error; err != nil {
			return err
		}
		link := &model.ActivityAttendee{
			UserID:     hostID,
			ActivityID: activity.ID,
			Role:       model.RoleHost,
		}
		return tx.Create(link).Error
	})
	if err != nil {
		return fmt.Errorf("create activity: %w", database.TranslateError(err))
	}
	return nil
}

// GetByID retrieves an activity with its attendees
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*model.Activity, error) {
	var activity model.Activity
	err := withAttendees(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &activity, nil
}

// ListUpcoming returns activities dated at or after now, soonest first
func (r *ActivityRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Activity, error) {
	q := withAttendees(r.db.WithContext(ctx)).
		Where("date >= ?", now.UTC()).
		Order("date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	activities := []model.Activity{}
	if err := q.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Update overwrites the editable fields of an activity and returns the
// number of rows affected
func (r *ActivityRepository) Update(ctx context.Context, req model.ActivityRequest) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"title":       req.Title,
			"date":        req.Date.UTC(),
			"description": req.Description,
			"category":    req.Category,
			"city":        req.City,
			"venue":       req.Venue,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("update activity: %w", database.TranslateError(result.Error))
	}
	return result.RowsAffected, nil
}

// SetCancelled flips the cancelled flag of an activity
func (r *ActivityRepository) SetCancelled(ctx context.Context, id string, cancelled bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_cancelled": cancelled,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("cancel activity: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// AddAttendee links a user to an activity as a regular attendee
func (r *ActivityRepository) AddAttendee(ctx context.Context, activityID, userID string) error {
	link := &model.ActivityAttendee{
		UserID:     userID,
		ActivityID: activityID,
		Role:       model.RoleAttendee,
	}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("add attendee: %w", database.TranslateError(err))
	}
	return nil
}

// RemoveAttendee unlinks a regular attendee. The host link is never removed.
func (r *ActivityRepository) RemoveAttendee(ctx context.Context, activityID, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ? AND role = ?", activityID, userID, model.RoleAttendee).
		Delete(&model.ActivityAttendee{})
	if result.Error != nil {
		return 0, fmt.Errorf("remove attendee: %w", result.Error)
	}
	return result.RowsAffected, nil
}
