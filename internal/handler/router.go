package handler

import (
	"net/http"

	"github.com/forgo/huddle/api/internal/middleware"
)

// RouterConfig holds the handlers mounted by NewRouter
type RouterConfig struct {
	Auth       middleware.AuthService
	UserLimit  *middleware.RateLimiter // optional per-user limit on protected routes
	Accounts   *AccountHandler
	Profiles   *ProfileHandler
	Activities *ActivityHandler
	Health     *HealthHandler
	Chat       *ChatHandler // optional
	Metrics    http.Handler // optional
	Static     http.Handler // optional SPA fallback
}

// NewRouter registers every API route. Everything except account creation,
// login and the probes requires a bearer token.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	authMiddleware := middleware.Auth(cfg.Auth)
	protected := func(fn http.HandlerFunc) http.Handler {
		if cfg.UserLimit == nil {
			return authMiddleware(fn)
		}
		return authMiddleware(middleware.UserRateLimit(cfg.UserLimit)(fn))
	}

	// Probes
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Account
	mux.HandleFunc("POST /account/register", cfg.Accounts.Register)
	mux.HandleFunc("POST /account/login", cfg.Accounts.Login)
	mux.Handle("GET /account", protected(cfg.Accounts.Current))

	// Profiles
	mux.Handle("PUT /profiles", protected(cfg.Profiles.Edit))
	mux.Handle("GET /profiles/{username}", protected(cfg.Profiles.Details))
	mux.Handle("GET /profiles/{username}/activities", protected(cfg.Profiles.Activities))

	// Activities
	mux.Handle("GET /activities", protected(cfg.Activities.List))
	mux.Handle("POST /activities", protected(cfg.Activities.Create))
	mux.Handle("GET /activities/{id}", protected(cfg.Activities.Details))
	mux.Handle("PUT /activities/{id}", protected(cfg.Activities.Update))
	mux.Handle("POST /activities/{id}/attend", protected(cfg.Activities.Attend))

	// Chat
	if cfg.Chat != nil {
		mux.Handle("GET /chat", protected(cfg.Chat.Connect))
	}

	if cfg.Static != nil {
		mux.Handle("/", cfg.Static)
	}

	return mux
}
