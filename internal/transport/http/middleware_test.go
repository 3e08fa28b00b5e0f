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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/idempotency"
	"github.com/tourdesk/tourdesk/internal/identity"
	"github.com/tourdesk/tourdesk/internal/rbac"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	return &Handler{
		tokens:         identity.NewTokenIssuer("test-secret", "tourdesk-test", time.Hour),
		auditLogger:    audit.NewSlogLogger(),
		idempotency:    idempotency.NewMemoryStore(),
		idempotencyTTL: time.Hour,
	}
}

func contextWithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func testToken(t *testing.T, h *Handler, orgID, userID, role string) string {
	t.Helper()
	token, err := h.tokens.Issue(&identity.User{
		ID:             userID,
		OrganizationID: orgID,
		Role:           role,
	})
	require.NoError(t, err)
	return token
}

// TestPurpose: Validates that requests without a bearer token are rejected.
// Scope: Unit Test
// Security: Fail-closed authentication boundary
// Expected: Returns HTTP 401 with an AUTHENTICATION_REQUIRED problem.
func TestAuthMiddleware_MissingToken_ReturnsUnauthorized(t *testing.T) {
	h := testHandler(t)

	next := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHENTICATION_REQUIRED")
}

// TestPurpose: Validates that a garbage token is rejected.
// Scope: Unit Test
// Security: Token integrity check
// Expected: Returns HTTP 401.
func TestAuthMiddleware_InvalidToken_ReturnsUnauthorized(t *testing.T) {
	h := testHandler(t)

	next := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestPurpose: Validates that a valid token injects org, user and role
// into the request context.
// Scope: Unit Test
// Expected: Context carries the claims from the token.
func TestAuthMiddleware_ValidToken_SetsContext(t *testing.T) {
	h := testHandler(t)
	token := testToken(t, h, "org-1", "user-1", rbac.RoleManager)

	var gotOrg, gotUser, gotRole string
	next := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrg = GetOrganizationID(r.Context())
		gotUser = GetUserID(r.Context())
		gotRole = GetRole(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "org-1", gotOrg)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, rbac.RoleManager, gotRole)
}

// TestPurpose: Validates the anti-spoofing rule: an authenticated request
// carrying an X-Tenant-Id that disagrees with the token is rejected.
// Scope: Unit Test
// Security: Tenant isolation, header spoofing prevention
// Expected: Returns HTTP 400; the next handler never runs.
func TestAuthMiddleware_TenantHeaderMismatch_Rejected(t *testing.T) {
	h := testHandler(t)
	token := testToken(t, h, "org-1", "user-1", rbac.RoleAdmin)

	next := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run on a tenant mismatch")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-Id", "org-2")
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// A matching X-Tenant-Id header is harmless and allowed through.
func TestAuthMiddleware_TenantHeaderMatch_Allowed(t *testing.T) {
	h := testHandler(t)
	token := testToken(t, h, "org-1", "user-1", rbac.RoleAdmin)

	called := false
	next := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-Id", "org-1")
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)

	assert.True(t, called)
}

// TestPurpose: Validates that the permission matrix is enforced per
// HTTP method: a viewer can read but not create.
// Scope: Unit Test
// Security: RBAC enforcement
// Expected: GET passes, POST returns 403.
func TestAuthorize_ViewerCannotCreate(t *testing.T) {
	h := testHandler(t)
	guard := h.Authorize(rbac.ResourceClients)

	next := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	asRole := func(method, role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/clients", nil)
		ctx := req.Context()
		req = req.WithContext(contextWithRole(ctx, role))
		w := httptest.NewRecorder()
		next.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, asRole(http.MethodGet, rbac.RoleViewer).Code)
	assert.Equal(t, http.StatusForbidden, asRole(http.MethodPost, rbac.RoleViewer).Code)
	assert.Equal(t, http.StatusOK, asRole(http.MethodPost, rbac.RoleManager).Code)
}

// TestPurpose: Validates that only admins manage organizations.
// Scope: Unit Test
// Security: Platform-scoped resource isolation
// Expected: Manager reads are refused on /organizations.
func TestAuthorize_OrganizationsAdminOnly(t *testing.T) {
	h := testHandler(t)
	guard := h.Authorize(rbac.ResourceOrganizations)

	next := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations", nil)
	req = req.WithContext(contextWithRole(req.Context(), rbac.RoleManager))
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// TestPurpose: Validates the per-caller token bucket and its headers.
// Scope: Unit Test
// Expected: Requests beyond the burst get 429 with a problem body and
// X-RateLimit headers present.
func TestRateLimitMiddleware_BurstExceeded(t *testing.T) {
	rl := NewRateLimiter(0.0001, 2)
	limited := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		last = httptest.NewRecorder()
		limited.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, last.Body.String(), "RATE_LIMIT_EXCEEDED")
}

// Separate callers get separate buckets.
func TestRateLimitMiddleware_PerCallerIsolation(t *testing.T) {
	rl := NewRateLimiter(0.0001, 1)
	limited := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1"
	w1 := httptest.NewRecorder()
	limited.ServeHTTP(w1, first)
	require.Equal(t, http.StatusOK, w1.Code)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.RemoteAddr = "10.0.0.1:1"
	w2 := httptest.NewRecorder()
	limited.ServeHTTP(w2, again)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1"
	w3 := httptest.NewRecorder()
	limited.ServeHTTP(w3, other)
	assert.Equal(t, http.StatusOK, w3.Code)
}

func TestMethodAction(t *testing.T) {
	assert.Equal(t, rbac.ActionRead, methodAction(http.MethodGet))
	assert.Equal(t, rbac.ActionCreate, methodAction(http.MethodPost))
	assert.Equal(t, rbac.ActionUpdate, methodAction(http.MethodPut))
	assert.Equal(t, rbac.ActionDelete, methodAction(http.MethodDelete))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, bearerToken(req))

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", bearerToken(req))

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, bearerToken(req))
}
