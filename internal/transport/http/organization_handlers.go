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
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/problem"
	"github.com/tourdesk/tourdesk/internal/tenant"
)

var organizationListOptions = listing.Options{
	DefaultSort: "name",
	SortFields: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
}

// Organization routes are self-service: an authenticated user can only
// read and manage the organization their token belongs to. Any other id
// answers 404 so tenant existence never leaks. Provisioning a tenant
// together with its first admin happens through /auth/register.

// ownOrganizationID resolves the {id} path parameter against the token's
// organization. On mismatch it writes the 404 problem and reports false.
func (h *Handler) ownOrganizationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	orgID := chi.URLParam(r, "id")
	if orgID != GetOrganizationID(r.Context()) {
		respondProblem(w, r, problem.NotFound("organization not found"))
		return "", false
	}
	return orgID, true
}

// CreateOrganization provisions a new tenant shell without users; it
// exists for operator tooling. The created organization is managed by
// whoever registers into it, not by the caller.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var org tenant.Organization
	if err := decodeJSON(r, &org); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}

	created, err := h.tenants.CreateOrganization(r.Context(), &org, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.ownOrganizationID(w, r)
	if !ok {
		return
	}
	org, err := h.tenants.GetOrganization(r.Context(), orgID)
	if err != nil {
		respondProblem(w, r, errProblem(err, tenant.ErrOrganizationNotFound))
		return
	}
	respondJSON(w, http.StatusOK, org)
}

func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.ownOrganizationID(w, r)
	if !ok {
		return
	}
	var org tenant.Organization
	if err := decodeJSON(r, &org); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	org.ID = orgID

	updated, err := h.tenants.UpdateOrganization(r.Context(), &org, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, tenant.ErrOrganizationNotFound))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) ArchiveOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.ownOrganizationID(w, r)
	if !ok {
		return
	}
	if err := h.tenants.ArchiveOrganization(r.Context(), orgID, GetUserID(r.Context())); err != nil {
		respondProblem(w, r, errProblem(err, tenant.ErrOrganizationNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOrganizations returns the caller's own organization in the
// standard list envelope. The collection route exists for surface
// uniformity; its visible population is always exactly one.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), organizationListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	org, err := h.tenants.GetOrganization(r.Context(), GetOrganizationID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, tenant.ErrOrganizationNotFound))
		return
	}

	data := []*tenant.Organization{org}
	if params.Page > 1 {
		data = []*tenant.Organization{}
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(data, params, 1))
}
