package model

import (
	"strings"
	"time"
)

const (
	MaxDisplayNameLength = 100
	MaxBioLength         = 2000
)

// Profile is the public projection of a user. Follower fields are
// placeholders until following is modelled.
type Profile struct {
	Username        string  `json:"username"`
	DisplayName     string  `json:"displayName"`
	Bio             *string `json:"bio"`
	Image           *string `json:"image"`
	Photos          []Photo `json:"photos"`
	ActivitiesCount int64   `json:"activitiesCount"`
	FollowersCount  int     `json:"followersCount"`
	FollowingCount  int     `json:"followingCount"`
	Following       bool    `json:"following"`
}

// NewProfile projects a user with its photos loaded.
func NewProfile(u *User, activitiesCount int64) *Profile {
	photos := u.Photos
	if photos == nil {
		photos = []Photo{}
	}
	return &Profile{
		Username:        u.UserName,
		DisplayName:     u.DisplayName,
		Bio:             u.Bio,
		Image:           u.MainPhotoURL(),
		Photos:          photos,
		ActivitiesCount: activitiesCount,
	}
}

// EditProfileRequest updates the caller's profile. A field that is omitted
// or null keeps its stored value.
type EditProfileRequest struct {
	DisplayName Optional[string] `json:"displayName"`
	Bio         Optional[string] `json:"bio"`
}

// Validate rejects a displayName that is present but null or blank.
func (r EditProfileRequest) Validate() []FieldError {
	var errs []FieldError
	if r.DisplayName.Set {
		switch {
		case r.DisplayName.Value == nil || strings.TrimSpace(*r.DisplayName.Value) == "":
			errs = append(errs, FieldError{Field: "displayName", Message: "is required"})
		case len(*r.DisplayName.Value) > MaxDisplayNameLength:
			errs = append(errs, FieldError{Field: "displayName", Message: "must be at most 100 characters"})
		}
	}
	if r.Bio.Value != nil && len(*r.Bio.Value) > MaxBioLength {
		errs = append(errs, FieldError{Field: "bio", Message: "must be at most 2000 characters"})
	}
	return errs
}

// ProfileDetailsQuery looks a profile up by username
type ProfileDetailsQuery struct {
	Username string `json:"username" validate:"required"`
}

func (q ProfileDetailsQuery) Validate() []FieldError {
	return ValidateStruct(q)
}

// ActivityPredicate selects which of a user's activities to list
type ActivityPredicate string

const (
	PredicateFuture ActivityPredicate = "future"
	PredicatePast   ActivityPredicate = "past"
	PredicateHost   ActivityPredicate = "host"
)

// ListActivitiesQuery lists a user's activities filtered by predicate. An
// empty predicate means future.
type ListActivitiesQuery struct {
	Username  string            `json:"username" validate:"required"`
	Predicate ActivityPredicate `json:"predicate" validate:"omitempty,oneof=future past host"`
}

func (q ListActivitiesQuery) Validate() []FieldError {
	return ValidateStruct(q)
}

// EffectivePredicate returns the predicate with the default applied.
func (q ListActivitiesQuery) EffectivePredicate() ActivityPredicate {
	if q.Predicate == "" {
		return PredicateFuture
	}
	return q.Predicate
}

// UserActivity is the lightweight summary listed on a profile
type UserActivity struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}
