package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgo/huddle/api/internal/testing/helpers"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp := app.anonymous(http.MethodGet, "/health").Do(app.router)

	helpers.AssertStatus(t, resp, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestReady_DatabaseUp(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp := app.anonymous(http.MethodGet, "/ready").Do(app.router)

	helpers.AssertStatus(t, resp, http.StatusOK)
	var body ReadinessResponse
	helpers.DecodeResponse(t, resp, &body)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
}

func TestReady_FailingCheck(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	resp := helpers.NewRequest(t, http.MethodGet, "/ready").Do(http.HandlerFunc(h.Ready))

	helpers.AssertStatus(t, resp, http.StatusServiceUnavailable)
	var body ReadinessResponse
	helpers.DecodeResponse(t, resp, &body)
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "connection refused", body.Checks["redis"])
}
