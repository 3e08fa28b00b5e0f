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
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/problem"
)

var invoiceListOptions = listing.Options{
	DefaultSort: "-created_at",
	SortFields: map[string]string{
		"number":     "number",
		"amount":     "amount_minor",
		"issue_date": "issue_date",
		"due_date":   "due_date",
		"created_at": "created_at",
	},
	Filters: map[string]string{
		"direction":       "direction",
		"state":           "status",
		"currency":        "currency",
		"booking_id":      "booking_id",
		"counterparty_id": "counterparty_id",
	},
}

var rateListOptions = listing.Options{
	DefaultSort: "-effective_date",
	SortFields: map[string]string{
		"effective_date": "effective_date",
		"created_at":     "created_at",
	},
	Filters: map[string]string{
		"base":  "base",
		"quote": "quote",
	},
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv billing.Invoice
	if err := decodeJSON(r, &inv); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	inv.OrganizationID = GetOrganizationID(r.Context())

	created, err := h.billing.CreateInvoice(r.Context(), &inv, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.billing.GetInvoice(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondProblem(w, r, errProblem(err, billing.ErrInvoiceNotFound))
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv billing.Invoice
	if err := decodeJSON(r, &inv); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	inv.ID = chi.URLParam(r, "id")
	inv.OrganizationID = GetOrganizationID(r.Context())

	updated, err := h.billing.UpdateInvoice(r.Context(), &inv, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, billing.ErrInvoiceNotFound))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.billing.IssueInvoice(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, billing.ErrInvoiceNotFound))
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.billing.MarkInvoicePaid(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, billing.ErrInvoiceNotFound))
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) VoidInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.billing.VoidInvoice(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, billing.ErrInvoiceNotFound))
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) ArchiveInvoice(w http.ResponseWriter, r *http.Request) {
	err := h.billing.ArchiveInvoice(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, billing.ErrInvoiceNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), invoiceListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	invoices, total, err := h.billing.ListInvoices(r.Context(), GetOrganizationID(r.Context()), params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(invoices, params, total))
}

func (h *Handler) ListReceivableInvoices(w http.ResponseWriter, r *http.Request) {
	h.listByDirection(w, r, billing.DirectionReceivable)
}

func (h *Handler) ListPayableInvoices(w http.ResponseWriter, r *http.Request) {
	h.listByDirection(w, r, billing.DirectionPayable)
}

func (h *Handler) listByDirection(w http.ResponseWriter, r *http.Request, direction string) {
	params, err := listing.Parse(r.URL.Query(), invoiceListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	invoices, total, err := h.billing.ListInvoicesByDirection(r.Context(), GetOrganizationID(r.Context()), direction, params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(invoices, params, total))
}

func (h *Handler) StoreExchangeRate(w http.ResponseWriter, r *http.Request) {
	var rate billing.ExchangeRate
	if err := decodeJSON(r, &rate); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	rate.OrganizationID = GetOrganizationID(r.Context())

	stored, err := h.billing.StoreRate(r.Context(), &rate, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

func (h *Handler) ListExchangeRates(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), rateListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	rates, total, err := h.billing.ListRates(r.Context(), GetOrganizationID(r.Context()), params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(rates, params, total))
}

// LatestExchangeRate resolves the rate for ?base=USD&quote=EUR as of
// ?date (default today).
func (h *Handler) LatestExchangeRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	base, quote := q.Get("base"), q.Get("quote")
	if base == "" || quote == "" {
		respondProblem(w, r, problem.Validation("base and quote query parameters are required"))
		return
	}

	asOf := time.Now()
	if d := q.Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			respondProblem(w, r, problem.Validation("date must be formatted YYYY-MM-DD"))
			return
		}
		asOf = parsed
	}

	rate, err := h.billing.LatestRate(r.Context(), GetOrganizationID(r.Context()), base, quote, asOf)
	if err != nil {
		respondProblem(w, r, errProblem(err, billing.ErrRateNotFound))
		return
	}
	respondJSON(w, http.StatusOK, rate)
}
