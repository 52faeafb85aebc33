package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/huddle/api/internal/model"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "Pa$$w0rd1"

// SeedUserRepository defines the user storage the seeder needs
type SeedUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int64, error)
}

// SeedActivityRepository defines the activity storage the seeder needs
type SeedActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity, hostID string) error
	AddAttendee(ctx context.Context, activityID, userID string) error
}

// SeederService generates demo data for development
type SeederService struct {
	users      SeedUserRepository
	activities SeedActivityRepository
	now        func() time.Time
	bcryptCost int
}

// SeedResult contains the results of a seeding operation
type SeedResult struct {
	Skipped    bool `json:"skipped"`
	Users      int  `json:"users"`
	Activities int  `json:"activities"`
}

// NewSeederService creates a new seeder service
func NewSeederService(users SeedUserRepository, activities SeedActivityRepository) *SeederService {
	return &SeederService{
		users:      users,
		activities: activities,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

type seedUser struct {
	username    string
	displayName string
	bio         string
	photo       string
}

var seedUsers = []seedUser{
	{"bob", "Bob", "Likes quizzes and long walks to the pub.", "https://res.cloudinary.com/huddle/image/upload/bob.jpg"},
	{"jane", "Jane", "Film buff. Will talk about subtitles.", "https://res.cloudinary.com/huddle/image/upload/jane.jpg"},
	{"tom", "Tom", "", ""},
}

type seedActivity struct {
	title     string
	category  string
	city      string
	venue     string
	offset    time.Duration
	host      int
	attendees []int
}

var seedActivities = []seedActivity{
	{"Past Activity 1", "drinks", "London", "Pub", -60 * 24 * time.Hour, 0, []int{1}},
	{"Past Activity 2", "culture", "Paris", "Louvre", -30 * 24 * time.Hour, 1, []int{0}},
	{"Future Activity 1", "culture", "London", "Natural History Museum", 30 * 24 * time.Hour, 2, []int{1}},
	{"Future Activity 2", "music", "London", "O2 Arena", 60 * 24 * time.Hour, 0, []int{2}},
	{"Future Activity 3", "drinks", "London", "Another pub", 90 * 24 * time.Hour, 1, []int{0}},
	{"Future Activity 4", "drinks", "London", "Yet another pub", 120 * 24 * time.Hour, 1, nil},
	{"Future Activity 5", "film", "London", "Cinema", 150 * 24 * time.Hour, 0, []int{1, 2}},
	{"Future Activity 6", "travel", "London", "Somewhere on the Thames", 180 * 24 * time.Hour, 2, []int{0}},
}

// Seed populates an empty store. A store that already has users is left
// untouched.
func (s *SeederService) Seed(ctx context.Context) (*SeedResult, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return &SeedResult{Skipped: true}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	result := &SeedResult{}
	users := make([]*model.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		user := &model.User{
			ID:           uuid.NewString(),
			UserName:     su.username,
			Email:        su.username + "@test.com",
			DisplayName:  su.displayName,
			PasswordHash: string(hash),
		}
		if su.bio != "" {
			bio := su.bio
			user.Bio = &bio
		}
		if su.photo != "" {
			user.Photos = []model.Photo{{ID: "seed-" + su.username, URL: su.photo, IsMain: true}}
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", su.username, err)
		}
		users = append(users, user)
		result.Users++
	}

	now := s.now().UTC()
	for _, sa := range seedActivities {
		activity := &model.Activity{
			ID:          uuid.NewString(),
			Title:       sa.title,
			Date:        now.Add(sa.offset),
			Description: fmt.Sprintf("Activity %s", sa.title),
			Category:    sa.category,
			City:        sa.city,
			Venue:       sa.venue,
		}
		if err := s.activities.Create(ctx, activity, users[sa.host].ID); err != nil {
			return nil, fmt.Errorf("seed activity %q: %w", sa.title, err)
		}
		for _, i := range sa.attendees {
			if err := s.activities.AddAttendee(ctx, activity.ID, users[i].ID); err != nil {
				return nil, fmt.Errorf("seed attendee: %w", err)
			}
		}
		result.Activities++
	}

	slog.InfoContext(ctx, "seeded demo data", "users", result.Users, "activities", result.Activities)
	return result, nil
}
