package handler

import (
	"net/http"

	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/service"
)

// AccountHandler handles registration, login and the current user
type AccountHandler struct {
	authService *service.AuthService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *service.AuthService) *AccountHandler {
	return &AccountHandler{
		authService: authService,
	}
}

// Register handles POST /account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Normalize()

	res, err := service.Send(r.Context(), "account.register", req, h.authService.Register)
	HandleResult(w, r, res, err)
}

// Login handles POST /account/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	res, err := service.Send(r.Context(), "account.login", req, h.authService.Login)
	HandleResult(w, r, res, err)
}

// Current handles GET /account - the caller with a fresh token
func (h *AccountHandler) Current(w http.ResponseWriter, r *http.Request) {
	res, err := service.Send(r.Context(), "account.current", model.CurrentUserQuery{}, h.authService.Current)
	HandleResult(w, r, res, err)
}
