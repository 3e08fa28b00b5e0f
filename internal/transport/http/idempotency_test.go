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
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func idempotentPost(h *Handler, next http.Handler, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader([]byte(body)))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	ctx := context.WithValue(req.Context(), organizationIDKey, "org-1")
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()
	h.IdempotencyMiddleware(next).ServeHTTP(w, req)
	return w
}

// TestPurpose: Validates replay semantics: a second POST with the same
// key and body returns the stored response without re-running the
// handler.
// Scope: Unit Test
// Expected: Handler runs once; replay carries Idempotency-Replayed.
func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	h := testHandler(t)

	var calls atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		respondJSON(w, http.StatusCreated, map[string]string{"id": "bk-1"})
	})

	first := idempotentPost(h, next, `{"title":"Cappadocia"}`, "key-1")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("Idempotency-Replayed"))

	second := idempotentPost(h, next, `{"title":"Cappadocia"}`, "key-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())
}

// TestPurpose: Validates that reusing a key with a different body is a
// conflict, not a silent replay of the old response.
// Scope: Unit Test
// Security: Prevents cross-request response leakage via key reuse
// Expected: Returns HTTP 409 with a CONFLICT problem.
func TestIdempotencyMiddleware_BodyMismatch_Conflict(t *testing.T) {
	h := testHandler(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"id": "bk-1"})
	})

	idempotentPost(h, next, `{"title":"Cappadocia"}`, "key-1")
	mismatch := idempotentPost(h, next, `{"title":"Ephesus"}`, "key-1")

	assert.Equal(t, http.StatusConflict, mismatch.Code)
	assert.Contains(t, mismatch.Body.String(), "CONFLICT")
}

// Failed executions are not stored, so a retry with the same key runs
// the handler again.
func TestIdempotencyMiddleware_FailureNotStored(t *testing.T) {
	h := testHandler(t)

	var calls atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	idempotentPost(h, next, `{}`, "key-err")
	idempotentPost(h, next, `{}`, "key-err")

	assert.Equal(t, int32(2), calls.Load())
}

// Requests without a key bypass the store entirely.
func TestIdempotencyMiddleware_NoKey_Passthrough(t *testing.T) {
	h := testHandler(t)

	var calls atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	})

	idempotentPost(h, next, `{}`, "")
	idempotentPost(h, next, `{}`, "")

	assert.Equal(t, int32(2), calls.Load())
}

// The handler still sees the full request body after the middleware
// has read it for fingerprinting.
func TestIdempotencyMiddleware_BodyPreserved(t *testing.T) {
	h := testHandler(t)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		seen = buf.String()
		w.WriteHeader(http.StatusCreated)
	})

	idempotentPost(h, next, `{"title":"Pamukkale"}`, "key-2")
	assert.Equal(t, `{"title":"Pamukkale"}`, seen)
}
