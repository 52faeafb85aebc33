package service

import (
	"context"
	"errors"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/pkg/jwt"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	msgEmailTaken    = "Email taken"
	msgUsernameTaken = "Username taken"
)

// AuthUserRepository defines the user storage the account use cases need
type AuthUserRepository interface {
	UserLookup
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService handles registration, login and token validation
type AuthService struct {
	users      AuthUserRepository
	jwt        *jwt.Service
	accessor   UserAccessor
	bcryptCost int
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	Users      AuthUserRepository
	JWT        *jwt.Service
	Accessor   UserAccessor
	BcryptCost int // defaults to 12
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcryptCost
	}
	return &AuthService{
		users:      cfg.Users,
		jwt:        cfg.JWT,
		accessor:   cfg.Accessor,
		bcryptCost: cost,
	}
}

// Register creates an account and signs the caller in
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.Result[*model.UserDto], error) {
	taken, err := s.taken(ctx, s.users.GetByEmail, req.Email)
	if err != nil {
		return model.Result[*model.UserDto]{}, err
	}
	if taken {
		return model.Failure[*model.UserDto](msgEmailTaken), nil
	}

	taken, err = s.taken(ctx, s.users.GetByUsername, req.Username)
	if err != nil {
		return model.Result[*model.UserDto]{}, err
	}
	if taken {
		return model.Failure[*model.UserDto](msgUsernameTaken), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.Result[*model.UserDto]{}, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		UserName:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return model.Failure[*model.UserDto](msgUsernameTaken), nil
		}
		return model.Result[*model.UserDto]{}, err
	}

	return s.userDto(user)
}

func (s *AuthService) taken(ctx context.Context, get func(context.Context, string) (*model.User, error), key string) (bool, error) {
	_, err := get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, database.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Login authenticates by email and password
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.Result[*model.UserDto], error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, database.ErrNotFound) {
		return model.Result[*model.UserDto]{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Result[*model.UserDto]{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.Result[*model.UserDto]{}, ErrInvalidCredentials
	}
	return s.userDto(user)
}

// Current returns the caller's account with a fresh token
func (s *AuthService) Current(ctx context.Context, _ model.CurrentUserQuery) (model.Result[*model.UserDto], error) {
	user, err := currentUser(ctx, s.accessor, s.users)
	if err != nil {
		return model.Result[*model.UserDto]{}, err
	}
	return s.userDto(user)
}

// ValidateAccessToken verifies a bearer token
func (s *AuthService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return s.jwt.Validate(token)
}

func (s *AuthService) userDto(user *model.User) (model.Result[*model.UserDto], error) {
	token, err := s.jwt.Sign(jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: user.ID},
		Email:            user.Email,
		Username:         user.UserName,
	})
	if err != nil {
		return model.Result[*model.UserDto]{}, err
	}
	return model.Success(&model.UserDto{
		Username:    user.UserName,
		DisplayName: user.DisplayName,
		Image:       user.MainPhotoURL(),
		Token:       token,
	}), nil
}
