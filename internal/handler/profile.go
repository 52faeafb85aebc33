package handler

import (
	"net/http"

	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/service"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// Edit handles PUT /profiles - update the caller's display name and bio
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req model.EditProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	res, err := service.Send(r.Context(), "profiles.edit", req, h.profileService.Edit)
	HandleResult(w, r, res, err)
}

// Details handles GET /profiles/{username}
func (h *ProfileHandler) Details(w http.ResponseWriter, r *http.Request) {
	q := model.ProfileDetailsQuery{Username: r.PathValue("username")}

	res, err := service.Send(r.Context(), "profiles.details", q, h.profileService.Details)
	HandleResult(w, r, res, err)
}

// Activities handles GET /profiles/{username}/activities?predicate=future|past|host
func (h *ProfileHandler) Activities(w http.ResponseWriter, r *http.Request) {
	q := model.ListActivitiesQuery{
		Username:  r.PathValue("username"),
		Predicate: model.ActivityPredicate(r.URL.Query().Get("predicate")),
	}

	res, err := service.Send(r.Context(), "profiles.activities", q, h.profileService.ListActivities)
	HandleResult(w, r, res, err)
}
