package model

import (
	"strings"
	"time"
)

// AttendeeRole is the role a user holds on an activity
type AttendeeRole string

const (
	RoleHost     AttendeeRole = "host"
	RoleAttendee AttendeeRole = "attendee"
)

// Activity is a scheduled gathering. Date is always stored in UTC.
type Activity struct {
	ID          string             `gorm:"primaryKey;size:36" json:"id"`
	Title       string             `gorm:"size:200;not null" json:"title"`
	Date        time.Time          `gorm:"not null;index" json:"date"`
	Description string             `gorm:"type:text" json:"description"`
	Category    string             `gorm:"size:50;not null;index" json:"category"`
	City        string             `gorm:"size:100" json:"city"`
	Venue       string             `gorm:"size:200" json:"venue"`
	IsCancelled bool               `gorm:"not null" json:"isCancelled"`
	Attendees   []ActivityAttendee `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (Activity) TableName() string { return "activities" }

// Host returns the host attendee link, or nil when attendees were not loaded.
func (a *Activity) Host() *ActivityAttendee {
	for i := range a.Attendees {
		if a.Attendees[i].Role == RoleHost {
			return &a.Attendees[i]
		}
	}
	return nil
}

// ActivityAttendee links a user to an activity with a role
type ActivityAttendee struct {
	UserID     string       `gorm:"primaryKey;size:36"`
	ActivityID string       `gorm:"primaryKey;size:36;index"`
	Role       AttendeeRole `gorm:"size:16;not null;index"`
	User       *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

func (ActivityAttendee) TableName() string { return "activity_attendees" }

// ActivityDto is the API representation of an activity and its attendees
type ActivityDto struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Date         time.Time     `json:"date"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	City         string        `json:"city"`
	Venue        string        `json:"venue"`
	IsCancelled  bool          `json:"isCancelled"`
	HostUsername string        `json:"hostUsername"`
	Attendees    []AttendeeDto `json:"attendees"`
}

// AttendeeDto is the profile summary shown in an activity's attendee list
type AttendeeDto struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName"`
	Bio         *string      `json:"bio"`
	Image       *string      `json:"image"`
	Role        AttendeeRole `json:"role"`
}

// NewActivityDto projects an activity whose attendees and their users are loaded.
func NewActivityDto(a *Activity) ActivityDto {
	dto := ActivityDto{
		ID:          a.ID,
		Title:       a.Title,
		Date:        a.Date,
		Description: a.Description,
		Category:    a.Category,
		City:        a.City,
		Venue:       a.Venue,
		IsCancelled: a.IsCancelled,
		Attendees:   make([]AttendeeDto, 0, len(a.Attendees)),
	}
	for _, att := range a.Attendees {
		if att.User == nil {
			continue
		}
		if att.Role == RoleHost {
			dto.HostUsername = att.User.UserName
		}
		dto.Attendees = append(dto.Attendees, AttendeeDto{
			Username:    att.User.UserName,
			DisplayName: att.User.DisplayName,
			Bio:         att.User.Bio,
			Image:       att.User.MainPhotoURL(),
			Role:        att.Role,
		})
	}
	return dto
}

// ActivityRequest is the body for creating or editing an activity
type ActivityRequest struct {
	ID          string    `json:"-"`
	Title       string    `json:"title" validate:"notblank,max=200"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"notblank"`
	Category    string    `json:"category" validate:"notblank,max=50"`
	City        string    `json:"city" validate:"notblank,max=100"`
	Venue       string    `json:"venue" validate:"notblank,max=200"`
}

func (r ActivityRequest) Validate() []FieldError {
	return ValidateStruct(r)
}

// Trimmed returns a copy with surrounding whitespace removed and Date in UTC.
func (r ActivityRequest) Trimmed() ActivityRequest {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.City = strings.TrimSpace(r.City)
	r.Venue = strings.TrimSpace(r.Venue)
	r.Date = r.Date.UTC()
	return r
}

// ActivityIDQuery addresses a single activity
type ActivityIDQuery struct {
	ID string `json:"id" validate:"required,max=36"`
}

func (q ActivityIDQuery) Validate() []FieldError {
	return ValidateStruct(q)
}

// ListActivitiesRequest lists upcoming activities
type ListActivitiesRequest struct {
	Limit int `json:"limit" validate:"min=0,max=100"`
}

func (r ListActivitiesRequest) Validate() []FieldError {
	return ValidateStruct(r)
}
