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
	"errors"
	"log/slog"
	"net/http"

	"github.com/tourdesk/tourdesk/internal/identity"
	"github.com/tourdesk/tourdesk/internal/observability/logger"
	"github.com/tourdesk/tourdesk/internal/problem"
	"github.com/tourdesk/tourdesk/internal/rbac"
	"github.com/tourdesk/tourdesk/internal/tenant"
)

// RegisterRequest bootstraps a new organization together with its
// first admin user.
type RegisterRequest struct {
	Organization tenant.Organization `json:"organization"`
	Email        string              `json:"email"`
	Password     string              `json:"password"`
	FullName     string              `json:"full_name"`
}

// Register creates an organization and its admin in one step. There is
// no self-signup into an existing organization; members are provisioned
// by an admin through /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}

	org, err := h.tenants.CreateOrganization(r.Context(), &req.Organization, "")
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}

	user, err := h.users.CreateUser(r.Context(), org.ID, req.Email, req.FullName, rbac.RoleAdmin, req.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to provision admin for new organization",
			logger.Error(err),
			logger.OrganizationID(org.ID),
		)
		// The organization exists without an admin; archive it so the
		// name is not burned by a half-finished bootstrap.
		if aerr := h.tenants.ArchiveOrganization(r.Context(), org.ID, ""); aerr != nil {
			slog.ErrorContext(r.Context(), "failed to roll back organization", logger.Error(aerr))
		}
		respondProblem(w, r, errProblem(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"organization": org,
		"user":         user,
	})
}

// LoginRequest carries login credentials. The organization is named
// explicitly because emails are only unique per organization; the
// X-Tenant-Id header is accepted as a fallback.
type LoginRequest struct {
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

// Login authenticates a user and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}

	orgID := req.OrganizationID
	if orgID == "" {
		orgID = r.Header.Get("X-Tenant-Id")
	}
	if orgID == "" {
		respondProblem(w, r, problem.Validation("organization_id is required"))
		return
	}

	user, err := h.users.Authenticate(r.Context(), orgID, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrAccountLocked) {
			respondProblem(w, r, problem.Unauthorized("account is temporarily locked"))
			return
		}
		respondProblem(w, r, problem.Unauthorized("invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token",
			logger.Error(err),
			logger.UserID(user.ID),
		)
		respondProblem(w, r, problem.Internal())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// CurrentUser returns the authenticated user's record.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), GetOrganizationID(r.Context()), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, identity.ErrUserNotFound))
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ChangePasswordRequest carries a self-service password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword rotates the caller's own password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}

	err := h.users.ChangePassword(r.Context(), GetOrganizationID(r.Context()), GetUserID(r.Context()), req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			respondProblem(w, r, problem.Unauthorized("current password is incorrect"))
			return
		}
		respondProblem(w, r, errProblem(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
