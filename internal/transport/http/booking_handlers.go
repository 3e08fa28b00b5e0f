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

	"github.com/tourdesk/tourdesk/internal/booking"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/problem"
)

var bookingListOptions = listing.Options{
	DefaultSort: "-start_date",
	SortFields: map[string]string{
		"reference":  "reference",
		"title":      "title",
		"start_date": "start_date",
		"end_date":   "end_date",
		"total":      "total_minor",
		"created_at": "created_at",
	},
	Filters: map[string]string{
		"client_id": "client_id",
		"agent_id":  "agent_id",
		"currency":  "currency",
		"state":     "status",
	},
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var b booking.Booking
	if err := decodeJSON(r, &b); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	b.OrganizationID = GetOrganizationID(r.Context())

	created, err := h.bookings.CreateBooking(r.Context(), &b, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.GetBooking(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondProblem(w, r, errProblem(err, booking.ErrBookingNotFound))
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var b booking.Booking
	if err := decodeJSON(r, &b); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	b.ID = chi.URLParam(r, "id")
	b.OrganizationID = GetOrganizationID(r.Context())

	updated, err := h.bookings.UpdateBooking(r.Context(), &b, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, booking.ErrBookingNotFound))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// TransitionRequest names the target booking status.
type TransitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}

	b, err := h.bookings.TransitionBooking(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), req.Status, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, booking.ErrBookingNotFound))
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (h *Handler) ArchiveBooking(w http.ResponseWriter, r *http.Request) {
	err := h.bookings.ArchiveBooking(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, booking.ErrBookingNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), bookingListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	bookings, total, err := h.bookings.ListBookings(r.Context(), GetOrganizationID(r.Context()), params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(bookings, params, total))
}
