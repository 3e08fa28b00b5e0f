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

	"github.com/tourdesk/tourdesk/internal/identity"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/problem"
)

var userListOptions = listing.Options{
	DefaultSort: "-created_at",
	SortFields: map[string]string{
		"email":      "email",
		"full_name":  "full_name",
		"role":       "role",
		"created_at": "created_at",
	},
	Filters: map[string]string{
		"role": "role",
	},
}

// CreateUserRequest provisions a member of the caller's organization.
type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}

	user, err := h.users.CreateUser(r.Context(), GetOrganizationID(r.Context()), req.Email, req.FullName, req.Role, req.Password)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondProblem(w, r, errProblem(err, identity.ErrUserNotFound))
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateUserRequest changes name and role; email and password have
// their own flows.
type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}

	user, err := h.users.UpdateUser(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), req.FullName, req.Role)
	if err != nil {
		respondProblem(w, r, errProblem(err, identity.ErrUserNotFound))
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) ArchiveUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.ArchiveUser(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondProblem(w, r, errProblem(err, identity.ErrUserNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), userListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	users, total, err := h.users.ListUsers(r.Context(), GetOrganizationID(r.Context()), params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(users, params, total))
}
