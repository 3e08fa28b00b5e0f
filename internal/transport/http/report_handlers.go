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
	"log/slog"
	"net/http"

	"github.com/tourdesk/tourdesk/internal/observability/logger"
	"github.com/tourdesk/tourdesk/internal/problem"
)

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.DashboardStats(r.Context(), GetOrganizationID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to aggregate dashboard stats", logger.Error(err))
		respondProblem(w, r, problem.Internal())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) UpcomingTours(w http.ResponseWriter, r *http.Request) {
	tours, err := h.reports.UpcomingTours(r.Context(), GetOrganizationID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list upcoming tours", logger.Error(err))
		respondProblem(w, r, problem.Internal())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": tours})
}

func (h *Handler) FinanceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.FinanceSummary(r.Context(), GetOrganizationID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to aggregate finance summary", logger.Error(err))
		respondProblem(w, r, problem.Internal())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) SalesOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reports.SalesOverview(r.Context(), GetOrganizationID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to aggregate sales overview", logger.Error(err))
		respondProblem(w, r, problem.Internal())
		return
	}
	respondJSON(w, http.StatusOK, overview)
}
