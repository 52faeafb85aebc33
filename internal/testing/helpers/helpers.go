// Package helpers provides HTTP request builders and response assertions
// shared by handler and server tests.
package helpers

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/pkg/jwt"
)

// ============================================================================
// JWT Helpers
// ============================================================================

// TestIssuer is the issuer of every token minted by NewTestJWTService
const TestIssuer = "huddle-test"

// NewTestJWTService creates a JWT service with in-memory keys for testing
func NewTestJWTService(t testing.TB) *jwt.Service {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("helpers: failed to generate RSA key: %v", err)
	}
	return jwt.NewTestService(privateKey, TestIssuer, 15*time.Minute)
}

// TokenFor signs a valid access token for user
func TokenFor(t testing.TB, svc *jwt.Service, user *model.User) string {
	t.Helper()

	token, err := svc.Sign(jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: user.ID},
		Email:            user.Email,
		Username:         user.UserName,
	})
	if err != nil {
		t.Fatalf("helpers: failed to sign token: %v", err)
	}
	return token
}

// ExpiredTokenFor signs an access token that expired an hour ago
func ExpiredTokenFor(t testing.TB, svc *jwt.Service, user *model.User) string {
	t.Helper()

	token, err := svc.Sign(jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Username: user.UserName,
	})
	if err != nil {
		t.Fatalf("helpers: failed to sign token: %v", err)
	}
	return token
}

// ============================================================================
// HTTP Request Helpers
// ============================================================================

// RequestBuilder helps construct HTTP requests for testing
type RequestBuilder struct {
	t       testing.TB
	method  string
	path    string
	body    any
	raw     []byte
	headers map[string]string
}

// NewRequest creates a new request builder
func NewRequest(t testing.TB, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: make(map[string]string),
	}
}

// WithBody sets the request body (will be JSON encoded)
func (rb *RequestBuilder) WithBody(body any) *RequestBuilder {
	rb.body = body
	return rb
}

// WithRawBody sets the request body verbatim
func (rb *RequestBuilder) WithRawBody(raw string) *RequestBuilder {
	rb.raw = []byte(raw)
	return rb
}

// WithHeader adds a header to the request
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// WithToken adds a bearer token
func (rb *RequestBuilder) WithToken(token string) *RequestBuilder {
	rb.headers["Authorization"] = "Bearer " + token
	return rb
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	switch {
	case rb.raw != nil:
		bodyReader = bytes.NewReader(rb.raw)
	case rb.body != nil:
		bodyBytes, err := json.Marshal(rb.body)
		if err != nil {
			rb.t.Fatalf("helpers: failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	return req
}

// Do builds the request and serves it through h
func (rb *RequestBuilder) Do(h http.Handler) *httptest.ResponseRecorder {
	rb.t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, rb.Build())
	return rr
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t testing.TB, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// AssertProblemDetails validates an RFC 9457 Problem Details error response
func AssertProblemDetails(t testing.TB, resp *httptest.ResponseRecorder, expectedStatus int, expectedCode model.ErrorCode) model.ProblemDetails {
	t.Helper()

	AssertStatus(t, resp, expectedStatus)

	var problem model.ProblemDetails
	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v. Body: %s", err, string(bodyBytes))
	}
	if problem.Status != expectedStatus {
		t.Errorf("expected problem.status %d, got %d", expectedStatus, problem.Status)
	}
	if expectedCode != 0 && problem.Code != expectedCode {
		t.Errorf("expected problem.code %d, got %d", expectedCode, problem.Code)
	}
	return problem
}

// AssertValidationError checks for a 400 validation error on a specific field
func AssertValidationError(t testing.TB, resp *httptest.ResponseRecorder, field string) {
	t.Helper()

	problem := AssertProblemDetails(t, resp, http.StatusBadRequest, model.ErrCodeValidation)
	for _, fe := range problem.Errors {
		if fe.Field == field {
			return
		}
	}
	t.Errorf("expected validation error on field %q, but not found. Errors: %+v", field, problem.Errors)
}

// AssertEmptyBody checks that nothing was written to the body
func AssertEmptyBody(t testing.TB, resp *httptest.ResponseRecorder) {
	t.Helper()
	if resp.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", resp.Body.String())
	}
}

// DecodeResponse decodes the response body into the given value
func DecodeResponse(t testing.TB, resp *httptest.ResponseRecorder, v any) {
	t.Helper()

	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, string(bodyBytes))
	}
}

// StringPtr returns a pointer to the string
func StringPtr(s string) *string {
	return &s
}
