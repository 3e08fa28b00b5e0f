// Copyright 2026 The TourDesk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/booking"
	"github.com/tourdesk/tourdesk/internal/directory"
	"github.com/tourdesk/tourdesk/internal/problem"
)

func newBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func TestHealthCheck(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "tourdesk", body["service"])
}

// TestPurpose: Validates the problem body shape and the X-Request-Id
// echo on error responses.
// Scope: Unit Test
// Expected: application/problem+json body carrying type, code, status
// and request_id.
func TestRespondProblem_Shape(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/nope", nil)
	w := httptest.NewRecorder()

	respondProblem(w, req, problem.NotFound("client not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var p problem.Problem
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "about:blank", p.Type)
	assert.Equal(t, problem.CodeNotFound, p.Code)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "client not found", p.Detail)
}

func TestErrProblem_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		pathErrs []error
		status   int
	}{
		{
			name:     "addressed resource missing",
			err:      directory.ErrClientNotFound,
			pathErrs: []error{directory.ErrClientNotFound},
			status:   http.StatusNotFound,
		},
		{
			name:     "wrapped path error still 404",
			err:      fmt.Errorf("lookup: %w", booking.ErrBookingNotFound),
			pathErrs: []error{booking.ErrBookingNotFound},
			status:   http.StatusNotFound,
		},
		{
			name:   "dangling reference maps to validation",
			err:    fmt.Errorf("booking client: %w", directory.ErrClientNotFound),
			status: http.StatusBadRequest,
		},
		{
			name:   "illegal transition is a conflict",
			err:    fmt.Errorf("completed: %w", booking.ErrInvalidTransition),
			status: http.StatusConflict,
		},
		{
			name:   "non-editable invoice is a conflict",
			err:    billing.ErrInvoiceNotEditable,
			status: http.StatusConflict,
		},
		{
			name:   "duplicate email is a conflict",
			err:    directory.ErrDuplicateEmail,
			status: http.StatusConflict,
		},
		{
			name:   "plain validation error",
			err:    fmt.Errorf("booking title is required"),
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := errProblem(tt.err, tt.pathErrs...)
			assert.Equal(t, tt.status, p.Status)
		})
	}
}

// decodeJSON rejects unknown fields so payload typos do not silently
// drop data.
func TestDecodeJSON_UnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", newBody(t, map[string]any{
		"status": "confirmed",
		"stauts": "oops",
	}))

	var dst TransitionRequest
	assert.Error(t, decodeJSON(req, &dst))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1:5555", getClientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getClientIP(req))
}
