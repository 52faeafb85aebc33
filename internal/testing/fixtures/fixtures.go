package fixtures

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/forgo/huddle/api/internal/model"
)

// DefaultPassword is the password of every fixture user
const DefaultPassword = "testpass123"

// Factory creates test entities in the database
type Factory struct {
	db *gorm.DB
}

// New creates a new fixture factory
func New(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email       string
	Username    string
	DisplayName string
	Bio         *string
	Password    string
	PhotoURLs   []string // first one becomes the main photo
}

// WithUsername sets the username
func WithUsername(username string) func(*UserOpts) {
	return func(o *UserOpts) {
		o.Username = username
		o.Email = username + "@test.local"
	}
}

// WithBio sets the bio
func WithBio(bio string) func(*UserOpts) {
	return func(o *UserOpts) { o.Bio = &bio }
}

// WithPhotos attaches photos
func WithPhotos(urls ...string) func(*UserOpts) {
	return func(o *UserOpts) { o.PhotoURLs = urls }
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t testing.TB, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		Email:       fmt.Sprintf("user_%s@test.local", id),
		Username:    fmt.Sprintf("user_%s", id),
		DisplayName: fmt.Sprintf("User %s", id),
		Password:    DefaultPassword,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		UserName:     o.Username,
		Email:        o.Email,
		DisplayName:  o.DisplayName,
		Bio:          o.Bio,
		PasswordHash: string(hash),
	}
	for i, url := range o.PhotoURLs {
		user.Photos = append(user.Photos, model.Photo{
			ID:     fmt.Sprintf("photo_%s", randomID()),
			URL:    url,
			IsMain: i == 0,
		})
	}

	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// ============================================================================
// Activity Fixtures
// ============================================================================

// ActivityOpts customizes activity creation
type ActivityOpts struct {
	Title    string
	Category string
	Date     time.Time
	City     string
	Venue    string
}

// WithTitle sets the activity title
func WithTitle(title string) func(*ActivityOpts) {
	return func(o *ActivityOpts) { o.Title = title }
}

// WithDate sets the activity date
func WithDate(date time.Time) func(*ActivityOpts) {
	return func(o *ActivityOpts) { o.Date = date.UTC() }
}

// WithCategory sets the activity category
func WithCategory(category string) func(*ActivityOpts) {
	return func(o *ActivityOpts) { o.Category = category }
}

// CreateActivity creates an activity hosted by host
func (f *Factory) CreateActivity(t testing.TB, host *model.User, opts ...func(*ActivityOpts)) *model.Activity {
	t.Helper()

	o := &ActivityOpts{
		Title:    fmt.Sprintf("Activity %s", randomID()),
		Category: "culture",
		Date:     time.Now().UTC().Add(7 * 24 * time.Hour),
		City:     "London",
		Venue:    "The Pub",
	}
	for _, fn := range opts {
		fn(o)
	}

	activity := &model.Activity{
		ID:          uuid.NewString(),
		Title:       o.Title,
		Date:        o.Date,
		Description: "Fixture activity",
		Category:    o.Category,
		City:        o.City,
		Venue:       o.Venue,
		Attendees: []model.ActivityAttendee{
			{UserID: host.ID, Role: model.RoleHost},
		},
	}
	if err := f.db.Create(activity).Error; err != nil {
		t.Fatalf("fixtures: failed to create activity: %v", err)
	}
	return activity
}

// AddAttendee links user to activity as a regular attendee
func (f *Factory) AddAttendee(t testing.TB, activity *model.Activity, user *model.User) {
	t.Helper()

	link := &model.ActivityAttendee{
		UserID:     user.ID,
		ActivityID: activity.ID,
		Role:       model.RoleAttendee,
	}
	if err := f.db.Create(link).Error; err != nil {
		t.Fatalf("fixtures: failed to add attendee: %v", err)
	}
}

// Reload fetches the stored user by ID
func (f *Factory) Reload(t testing.TB, user *model.User) *model.User {
	t.Helper()

	var fresh model.User
	if err := f.db.First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("fixtures: failed to reload user: %v", err)
	}
	return &fresh
}
