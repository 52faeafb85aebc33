package model

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// Error() Interface Tests
// ============================================================================

func TestProblemDetails_Error_ReturnsFormattedMessage(t *testing.T) {
	t.Parallel()

	pd := &ProblemDetails{
		Status: http.StatusNotFound,
		Title:  "Not Found",
		Detail: "profile not found",
	}

	errMsg := pd.Error()

	if !strings.Contains(errMsg, "404") {
		t.Errorf("error message should contain status code, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "profile not found") {
		t.Errorf("error message should contain detail, got: %s", errMsg)
	}
}

func TestValidationError_Error_ListsFields(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Errors: []FieldError{
		{Field: "displayName", Message: "is required"},
		{Field: "bio", Message: "must be at most 2000 characters"},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "displayName is required") {
		t.Errorf("expected displayName in message, got %q", msg)
	}
	if !strings.Contains(msg, "bio must be at most") {
		t.Errorf("expected bio in message, got %q", msg)
	}
}

// ============================================================================
// WriteJSON Tests
// ============================================================================

func TestProblemDetails_WriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	t.Parallel()

	pd := NewForbiddenError("only the host can edit this activity")
	rr := httptest.NewRecorder()

	pd.WriteJSON(rr)

	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected Content-Type 'application/problem+json', got %q", ct)
	}
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}

func TestProblemDetails_WriteJSON_EncodesBody(t *testing.T) {
	t.Parallel()

	pd := NewDomainFailureError("Problem updating profile")
	rr := httptest.NewRecorder()

	pd.WriteJSON(rr)

	var result ProblemDetails
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if result.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", result.Status)
	}
	if result.Detail != "Problem updating profile" {
		t.Errorf("expected detail to carry the failure message, got %q", result.Detail)
	}
	if result.Code != ErrCodeDomainFailure {
		t.Errorf("expected code %d, got %d", ErrCodeDomainFailure, result.Code)
	}
}

// ============================================================================
// Constructor Tests
// ============================================================================

func TestNewUnauthorizedError_ReturnsCorrectValues(t *testing.T) {
	t.Parallel()

	pd := NewUnauthorizedError("token expired")

	if pd.Status != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, pd.Status)
	}
	if pd.Code != ErrCodeUnauthorized {
		t.Errorf("expected code %d, got %d", ErrCodeUnauthorized, pd.Code)
	}
	if !strings.HasSuffix(pd.Type, "/unauthorized") {
		t.Errorf("expected type to end with '/unauthorized', got %q", pd.Type)
	}
}

func TestNewNotFoundError_FormatsResourceName(t *testing.T) {
	t.Parallel()

	pd := NewNotFoundError("activity")

	if pd.Status != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, pd.Status)
	}
	if pd.Detail != "activity not found" {
		t.Errorf("expected detail 'activity not found', got %q", pd.Detail)
	}
}

func TestNewValidationError_IsBadRequest(t *testing.T) {
	t.Parallel()

	pd := NewValidationError([]FieldError{{Field: "displayName", Message: "is required"}})

	if pd.Status != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, pd.Status)
	}
	if pd.Detail != "displayName: is required" {
		t.Errorf("unexpected detail %q", pd.Detail)
	}
	if len(pd.Errors) != 1 {
		t.Errorf("expected 1 field error, got %d", len(pd.Errors))
	}
}

func TestNewValidationError_MultipleFields_SummarizesCount(t *testing.T) {
	t.Parallel()

	pd := NewValidationError([]FieldError{
		{Field: "title", Message: "is required"},
		{Field: "city", Message: "is required"},
		{Field: "venue", Message: "is required"},
	})

	if !strings.Contains(pd.Detail, "2 more errors") {
		t.Errorf("detail should mention count of additional errors, got %q", pd.Detail)
	}
}

func TestNewValidationError_EmptyErrors_ReturnsDefaultMessage(t *testing.T) {
	t.Parallel()

	pd := NewValidationError(nil)

	if pd.Detail != "One or more fields failed validation" {
		t.Errorf("expected default detail message, got %q", pd.Detail)
	}
}

func TestNewInternalError_EmptyDetail_UsesDefault(t *testing.T) {
	t.Parallel()

	pd := NewInternalError("")

	if pd.Status != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, pd.Status)
	}
	if pd.Detail != "An unexpected error occurred" {
		t.Errorf("expected default detail message, got %q", pd.Detail)
	}
}

func TestNewRateLimitError_IncludesRetryAfter(t *testing.T) {
	t.Parallel()

	pd := NewRateLimitError(7)

	if pd.Status != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, pd.Status)
	}
	if !strings.Contains(pd.Detail, "7 seconds") {
		t.Errorf("detail should contain retry seconds, got %q", pd.Detail)
	}
}
