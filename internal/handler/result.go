package handler

import (
	"log/slog"
	"net/http"

	"github.com/forgo/huddle/api/internal/middleware"
	"github.com/forgo/huddle/api/internal/model"
)

// HandleResult writes the HTTP response for a use-case outcome. It is the
// only place results become status codes.
func HandleResult[T any](w http.ResponseWriter, r *http.Request, res model.Result[T], err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	switch {
	case !res.IsSuccess():
		WriteError(w, model.NewDomainFailureError(res.Message()))
	case !res.Found():
		w.WriteHeader(http.StatusNotFound)
	default:
		if _, ok := any(res.Value()).(model.Unit); ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		WriteJSON(w, http.StatusOK, res.Value())
	}
}

// writeServiceError maps a fault onto a problem response. Unmapped faults
// are logged and reported without internal detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	problem := MapServiceError(err)
	if problem.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "unhandled service error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	WriteError(w, problem)
}
