package model

import (
	"strings"
	"time"
)

// User represents an application account and the profile fields it owns.
// UserName is stored lowercase and never changes after registration.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserName     string    `gorm:"size:32;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	DisplayName  string    `gorm:"size:100;not null" json:"displayName"`
	Bio          *string   `gorm:"type:text" json:"bio"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password hash
	Photos       []Photo   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// MainPhotoURL returns the URL of the photo flagged as main, if any.
func (u *User) MainPhotoURL() *string {
	for i := range u.Photos {
		if u.Photos[i].IsMain {
			url := u.Photos[i].URL
			return &url
		}
	}
	return nil
}

// Photo is an image owned by a user
type Photo struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	URL       string    `gorm:"not null" json:"url"`
	IsMain    bool      `gorm:"not null" json:"isMain"`
	UserID    string    `gorm:"size:36;not null;index" json:"-"`
	CreatedAt time.Time `json:"-"`
}

func (Photo) TableName() string { return "photos" }

// UserDto is returned by the account endpoints
type UserDto struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Image       *string `json:"image"`
	Token       string  `json:"token"`
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Username    string `json:"username" validate:"required,username"`
	DisplayName string `json:"displayName" validate:"notblank,max=100"`
	Password    string `json:"password" validate:"required,password"`
}

// Normalize lowercases the username and email before validation.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r RegisterRequest) Validate() []FieldError {
	return ValidateStruct(r)
}

// LoginRequest authenticates by email and password
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() []FieldError {
	return ValidateStruct(r)
}

// CurrentUserQuery resolves the caller from the request context
type CurrentUserQuery struct{}

func (CurrentUserQuery) Validate() []FieldError { return nil }
