package handler

import (
	"net/http"
	"strconv"

	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/service"
)

// ActivityHandler handles activity endpoints
type ActivityHandler struct {
	activityService *service.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// List handles GET /activities?limit=
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	var req model.ListActivitiesRequest
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, model.NewValidationError([]model.FieldError{{Field: "limit", Message: "must be a number"}}))
			return
		}
		req.Limit = limit
	}

	res, err := service.Send(r.Context(), "activities.list", req, h.activityService.List)
	HandleResult(w, r, res, err)
}

// Details handles GET /activities/{id}
func (h *ActivityHandler) Details(w http.ResponseWriter, r *http.Request) {
	q := model.ActivityIDQuery{ID: r.PathValue("id")}

	res, err := service.Send(r.Context(), "activities.details", q, h.activityService.Details)
	HandleResult(w, r, res, err)
}

// Create handles POST /activities - the caller becomes the host
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ActivityRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	res, err := service.Send(r.Context(), "activities.create", req, h.activityService.Create)
	HandleResult(w, r, res, err)
}

// Update handles PUT /activities/{id} - host only
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ActivityRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.ID = r.PathValue("id")

	res, err := service.Send(r.Context(), "activities.update", req, h.activityService.Update)
	HandleResult(w, r, res, err)
}

// Attend handles POST /activities/{id}/attend
func (h *ActivityHandler) Attend(w http.ResponseWriter, r *http.Request) {
	q := model.ActivityIDQuery{ID: r.PathValue("id")}

	res, err := service.Send(r.Context(), "activities.attend", q, h.activityService.Attend)
	HandleResult(w, r, res, err)
}
