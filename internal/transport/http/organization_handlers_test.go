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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/tenant"
)

// fakeOrgRepo is an in-memory tenant.Repository for handler tests.
type fakeOrgRepo struct {
	orgs     map[string]*tenant.Organization
	archived []string
}

func newFakeOrgRepo(orgs ...*tenant.Organization) *fakeOrgRepo {
	r := &fakeOrgRepo{orgs: map[string]*tenant.Organization{}}
	for _, o := range orgs {
		r.orgs[o.ID] = o
	}
	return r
}

func (r *fakeOrgRepo) Create(ctx context.Context, org *tenant.Organization) error {
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrgRepo) GetByID(ctx context.Context, id string) (*tenant.Organization, error) {
	org, ok := r.orgs[id]
	if !ok {
		return nil, tenant.ErrOrganizationNotFound
	}
	return org, nil
}

func (r *fakeOrgRepo) GetByName(ctx context.Context, name string) (*tenant.Organization, error) {
	for _, org := range r.orgs {
		if org.Name == name {
			return org, nil
		}
	}
	return nil, tenant.ErrOrganizationNotFound
}

func (r *fakeOrgRepo) Update(ctx context.Context, org *tenant.Organization) error {
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrgRepo) Archive(ctx context.Context, id string, at time.Time) error {
	r.archived = append(r.archived, id)
	return nil
}

func orgTestHandler(t *testing.T, repo *fakeOrgRepo) *Handler {
	t.Helper()
	h := testHandler(t)
	h.tenants = tenant.NewService(repo, audit.NewSlogLogger())
	return h
}

// orgRequest builds a request routed at /organizations/{id} with the
// caller's tenant already resolved into the context.
func orgRequest(method, id, callerOrg string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/organizations/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, organizationIDKey, callerOrg)
	ctx = context.WithValue(ctx, userIDKey, "user-1")
	return req.WithContext(ctx)
}

// TestPurpose: Validates that an admin of one tenant cannot archive
// another tenant's organization through the organizations resource.
// Scope: Unit Test
// Security: Tenant isolation; existence of foreign tenants must not leak.
// Expected: Returns HTTP 404 and performs no archive.
func TestArchiveOrganization_ForeignTenant_NotFound(t *testing.T) {
	repo := newFakeOrgRepo(
		&tenant.Organization{ID: "org-a", Name: "Aegean Tours"},
		&tenant.Organization{ID: "org-b", Name: "Baltic Tours"},
	)
	h := orgTestHandler(t, repo)

	w := httptest.NewRecorder()
	h.ArchiveOrganization(w, orgRequest(http.MethodDelete, "org-b", "org-a"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
	assert.Empty(t, repo.archived)
}

// TestPurpose: Validates that reads of a foreign organization id answer
// 404 identically whether or not the organization exists.
// Scope: Unit Test
// Security: Tenant isolation on reads.
func TestGetOrganization_ForeignTenant_NotFound(t *testing.T) {
	repo := newFakeOrgRepo(
		&tenant.Organization{ID: "org-a", Name: "Aegean Tours"},
		&tenant.Organization{ID: "org-b", Name: "Baltic Tours"},
	)
	h := orgTestHandler(t, repo)

	for _, id := range []string{"org-b", "org-missing"} {
		w := httptest.NewRecorder()
		h.GetOrganization(w, orgRequest(http.MethodGet, id, "org-a"))
		assert.Equal(t, http.StatusNotFound, w.Code, "id %s", id)
	}
}

func TestOrganization_OwnTenant_Allowed(t *testing.T) {
	repo := newFakeOrgRepo(&tenant.Organization{ID: "org-a", Name: "Aegean Tours", BaseCurrency: "EUR"})
	h := orgTestHandler(t, repo)

	w := httptest.NewRecorder()
	h.GetOrganization(w, orgRequest(http.MethodGet, "org-a", "org-a"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ArchiveOrganization(w, orgRequest(http.MethodDelete, "org-a", "org-a"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"org-a"}, repo.archived)
}

// TestPurpose: Validates that the organizations listing exposes only the
// caller's tenant and uses the standard envelope shape.
// Scope: Unit Test
// Expected: One row, pagination with total_pages.
func TestListOrganizations_OwnTenantOnly(t *testing.T) {
	repo := newFakeOrgRepo(
		&tenant.Organization{ID: "org-a", Name: "Aegean Tours"},
		&tenant.Organization{ID: "org-b", Name: "Baltic Tours"},
	)
	h := orgTestHandler(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations", nil)
	ctx := context.WithValue(req.Context(), organizationIDKey, "org-a")
	w := httptest.NewRecorder()
	h.ListOrganizations(w, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []tenant.Organization `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			PageSize   int `json:"page_size"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "org-a", body.Data[0].ID)
	assert.Equal(t, 1, body.Pagination.Total)
	assert.Equal(t, 1, body.Pagination.TotalPages)
}
