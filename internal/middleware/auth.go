package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/pkg/jwt"
)

// AuthService defines the interface for token validation
type AuthService interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// accessTokenParam carries the token for websocket upgrades, where browsers
// cannot set an Authorization header.
const accessTokenParam = "access_token"

var (
	errMissingHeader = errors.New("missing authorization header")
	errHeaderFormat  = errors.New("invalid authorization header format")
)

// Auth returns a middleware that validates JWT tokens
func Auth(authService AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				model.NewUnauthorizedError(err.Error()).WriteJSON(w)
				return
			}

			// Validate token
			claims, err := authService.ValidateAccessToken(token)
			if err != nil {
				tokenProblem(err).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// tokenProblem distinguishes an expired token, which a client can refresh,
// from one that will never validate.
func tokenProblem(err error) *model.ProblemDetails {
	var problem *model.ProblemDetails
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		problem = model.NewUnauthorizedError("token expired")
		problem.Code = model.ErrCodeTokenExpired
	case errors.Is(err, jwt.ErrInvalidSignature):
		problem = model.NewUnauthorizedError("invalid token signature")
		problem.Code = model.ErrCodeTokenInvalid
	default:
		problem = model.NewUnauthorizedError("invalid token")
		problem.Code = model.ErrCodeTokenInvalid
	}
	return problem
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if isUpgrade(r) {
			if token := r.URL.Query().Get(accessTokenParam); token != "" {
				return token, nil
			}
		}
		return "", errMissingHeader
	}

	// Check Bearer prefix
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errHeaderFormat
	}
	return parts[1], nil
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID())
	return context.WithValue(ctx, UsernameKey, claims.Username)
}

// UsernameKey is the context key for the username
const UsernameKey contextKey = "username"

// GetUserID extracts the user ID from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUsername extracts the username from context
func GetUsername(ctx context.Context) string {
	if username, ok := ctx.Value(UsernameKey).(string); ok {
		return username
	}
	return ""
}

// ContextUserAccessor resolves the caller from the claims Auth put in the
// request context.
type ContextUserAccessor struct{}

func (ContextUserAccessor) Username(ctx context.Context) string {
	return GetUsername(ctx)
}
