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

	"github.com/tourdesk/tourdesk/internal/directory"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/problem"
)

var clientListOptions = listing.Options{
	DefaultSort: "-created_at",
	SortFields: map[string]string{
		"full_name":  "full_name",
		"country":    "country",
		"created_at": "created_at",
	},
	Filters: map[string]string{
		"agent_id":    "agent_id",
		"country":     "country",
		"nationality": "nationality",
	},
}

var agentListOptions = listing.Options{
	DefaultSort: "name",
	SortFields: map[string]string{
		"name":           "name",
		"country":        "country",
		"commission_bps": "commission_bps",
		"created_at":     "created_at",
	},
	Filters: map[string]string{
		"country": "country",
	},
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var c directory.Client
	if err := decodeJSON(r, &c); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	c.OrganizationID = GetOrganizationID(r.Context())

	created, err := h.directory.CreateClient(r.Context(), &c, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.directory.GetClient(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondProblem(w, r, errProblem(err, directory.ErrClientNotFound))
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var c directory.Client
	if err := decodeJSON(r, &c); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	c.ID = chi.URLParam(r, "id")
	c.OrganizationID = GetOrganizationID(r.Context())

	updated, err := h.directory.UpdateClient(r.Context(), &c, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, directory.ErrClientNotFound))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) ArchiveClient(w http.ResponseWriter, r *http.Request) {
	err := h.directory.ArchiveClient(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, directory.ErrClientNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), clientListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	clients, total, err := h.directory.ListClients(r.Context(), GetOrganizationID(r.Context()), params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(clients, params, total))
}

func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var a directory.Agent
	if err := decodeJSON(r, &a); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	a.OrganizationID = GetOrganizationID(r.Context())

	created, err := h.directory.CreateAgent(r.Context(), &a, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	a, err := h.directory.GetAgent(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondProblem(w, r, errProblem(err, directory.ErrAgentNotFound))
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	var a directory.Agent
	if err := decodeJSON(r, &a); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	a.ID = chi.URLParam(r, "id")
	a.OrganizationID = GetOrganizationID(r.Context())

	updated, err := h.directory.UpdateAgent(r.Context(), &a, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, directory.ErrAgentNotFound))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) ArchiveAgent(w http.ResponseWriter, r *http.Request) {
	err := h.directory.ArchiveAgent(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, directory.ErrAgentNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), agentListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	agents, total, err := h.directory.ListAgents(r.Context(), GetOrganizationID(r.Context()), params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(agents, params, total))
}
