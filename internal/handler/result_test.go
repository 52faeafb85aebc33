package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/service"
	"github.com/forgo/huddle/api/internal/testing/helpers"
)

// ============================================================================
// HandleResult
// ============================================================================

func handle[T any](res model.Result[T], err error) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	HandleResult(rr, httptest.NewRequest(http.MethodGet, "/", nil), res, err)
	return rr
}

func TestHandleResult_SuccessWritesValue(t *testing.T) {
	t.Parallel()

	rr := handle(model.Success(map[string]int{"count": 3}), nil)

	helpers.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":3}`, rr.Body.String())
}

func TestHandleResult_UnitIsEmpty200(t *testing.T) {
	t.Parallel()

	rr := handle(model.Success(model.Unit{}), nil)

	helpers.AssertStatus(t, rr, http.StatusOK)
	helpers.AssertEmptyBody(t, rr)
}

func TestHandleResult_NotFoundIsEmpty404(t *testing.T) {
	t.Parallel()

	rr := handle(model.NotFound[*model.Profile](), nil)

	helpers.AssertStatus(t, rr, http.StatusNotFound)
	helpers.AssertEmptyBody(t, rr)
}

func TestHandleResult_FailureIs400WithMessage(t *testing.T) {
	t.Parallel()

	rr := handle(model.Failure[model.Unit]("Problem updating profile"), nil)

	problem := helpers.AssertProblemDetails(t, rr, http.StatusBadRequest, model.ErrCodeDomainFailure)
	assert.Equal(t, "Problem updating profile", problem.Detail)
}

func TestHandleResult_ErrorWins(t *testing.T) {
	t.Parallel()

	rr := handle(model.Success("ignored"), errors.New("disk on fire"))

	problem := helpers.AssertProblemDetails(t, rr, http.StatusInternalServerError, model.ErrCodeInternal)
	assert.NotContains(t, problem.Detail, "disk")
}

// ============================================================================
// MapServiceError
// ============================================================================

func TestMapServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   model.ErrorCode
	}{
		{"validation", &model.ValidationError{Errors: []model.FieldError{{Field: "bio", Message: "too long"}}}, http.StatusBadRequest, model.ErrCodeValidation},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, model.ErrCodeLoginFailed},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, model.ErrCodeUnauthorized},
		{"not host", service.ErrNotHost, http.StatusForbidden, model.ErrCodeNotHost},
		{"activity not found", service.ErrActivityNotFound, http.StatusNotFound, model.ErrCodeNotFound},
		{"wrapped", fmt.Errorf("update: %w", service.ErrNotHost), http.StatusForbidden, model.ErrCodeNotHost},
		{"caller not found", service.ErrCallerNotFound, http.StatusInternalServerError, model.ErrCodeInternal},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			problem := MapServiceError(tt.err)
			assert.Equal(t, tt.status, problem.Status)
			assert.Equal(t, tt.code, problem.Code)
		})
	}
}

func TestMapServiceError_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, MapServiceError(nil))
}

func TestMapServiceError_ValidationKeepsFields(t *testing.T) {
	t.Parallel()

	problem := MapServiceError(&model.ValidationError{Errors: []model.FieldError{{Field: "displayName", Message: "is required"}}})

	if assert.Len(t, problem.Errors, 1) {
		assert.Equal(t, "displayName", problem.Errors[0].Field)
	}
}
