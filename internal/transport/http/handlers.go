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

// Package http exposes the REST API: one route group per entity, all
// tenant-scoped behind bearer auth, with RFC 7807 problem bodies on
// failure.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/booking"
	"github.com/tourdesk/tourdesk/internal/directory"
	"github.com/tourdesk/tourdesk/internal/idempotency"
	"github.com/tourdesk/tourdesk/internal/identity"
	"github.com/tourdesk/tourdesk/internal/problem"
	"github.com/tourdesk/tourdesk/internal/rbac"
	"github.com/tourdesk/tourdesk/internal/report"
	"github.com/tourdesk/tourdesk/internal/supplier"
	"github.com/tourdesk/tourdesk/internal/tenant"
)

// Handler holds the services behind the REST API.
type Handler struct {
	tenants        *tenant.Service
	users          *identity.Service
	tokens         *identity.TokenIssuer
	directory      *directory.Service
	suppliers      *supplier.Service
	bookings       *booking.Service
	billing        *billing.Service
	reports        *report.Service
	auditLogger    audit.Logger
	idempotency    idempotency.Store
	idempotencyTTL time.Duration
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	tenants *tenant.Service,
	users *identity.Service,
	tokens *identity.TokenIssuer,
	directoryService *directory.Service,
	suppliers *supplier.Service,
	bookings *booking.Service,
	billingService *billing.Service,
	reports *report.Service,
	auditLogger audit.Logger,
	idempotencyStore idempotency.Store,
	idempotencyTTL time.Duration,
) *Handler {
	return &Handler{
		tenants:        tenants,
		users:          users,
		tokens:         tokens,
		directory:      directoryService,
		suppliers:      suppliers,
		bookings:       bookings,
		billing:        billingService,
		reports:        reports,
		auditLogger:    auditLogger,
		idempotency:    idempotencyStore,
		idempotencyTTL: idempotencyTTL,
	}
}

// NewRouter creates the HTTP router.
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints, limited per IP.
		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(rateLimiter))
			r.Post("/auth/register", h.Register)
			r.Post("/auth/login", h.Login)
		})

		// Everything else requires a token; the limiter here keys on
		// the authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Use(RateLimitMiddleware(rateLimiter))
			r.Use(h.IdempotencyMiddleware)

			r.Get("/auth/me", h.CurrentUser)
			r.Post("/auth/change-password", h.ChangePassword)

			r.Route("/organizations", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceOrganizations))
				r.Get("/", h.ListOrganizations)
				r.Post("/", h.CreateOrganization)
				r.Get("/{id}", h.GetOrganization)
				r.Put("/{id}", h.UpdateOrganization)
				r.Delete("/{id}", h.ArchiveOrganization)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceUsers))
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.ArchiveUser)
			})

			r.Route("/clients", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceClients))
				r.Get("/", h.ListClients)
				r.Post("/", h.CreateClient)
				r.Get("/{id}", h.GetClient)
				r.Put("/{id}", h.UpdateClient)
				r.Delete("/{id}", h.ArchiveClient)
			})

			r.Route("/agents", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceAgents))
				r.Get("/", h.ListAgents)
				r.Post("/", h.CreateAgent)
				r.Get("/{id}", h.GetAgent)
				r.Put("/{id}", h.UpdateAgent)
				r.Delete("/{id}", h.ArchiveAgent)
			})

			r.Route("/providers", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceProviders))
				r.Get("/", h.ListProviders)
				r.Post("/", h.CreateProvider)
				r.Get("/{id}", h.GetProvider)
				r.Put("/{id}", h.UpdateProvider)
				r.Delete("/{id}", h.ArchiveProvider)
			})

			// Provider offerings share the provider permission.
			h.mountOfferings(r)

			r.Route("/bookings", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceBookings))
				r.Get("/", h.ListBookings)
				r.Post("/", h.CreateBooking)
				r.Get("/{id}", h.GetBooking)
				r.Put("/{id}", h.UpdateBooking)
				r.Delete("/{id}", h.ArchiveBooking)
				r.With(h.AuthorizeAction(rbac.ResourceBookings, rbac.ActionUpdate)).
					Post("/{id}/status", h.TransitionBooking)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceInvoices))
				r.Get("/", h.ListInvoices)
				r.Get("/receivable", h.ListReceivableInvoices)
				r.Get("/payable", h.ListPayableInvoices)
				r.Post("/", h.CreateInvoice)
				r.Get("/{id}", h.GetInvoice)
				r.Put("/{id}", h.UpdateInvoice)
				r.Delete("/{id}", h.ArchiveInvoice)
				r.Group(func(r chi.Router) {
					r.Use(h.AuthorizeAction(rbac.ResourceInvoices, rbac.ActionUpdate))
					r.Post("/{id}/issue", h.IssueInvoice)
					r.Post("/{id}/pay", h.PayInvoice)
					r.Post("/{id}/void", h.VoidInvoice)
				})
			})

			r.Route("/finance", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceFinance))
				r.Get("/exchange-rates", h.ListExchangeRates)
				r.Post("/exchange-rates", h.StoreExchangeRate)
				r.Get("/exchange-rates/latest", h.LatestExchangeRate)
				r.Get("/summary", h.FinanceSummary)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Use(h.Authorize(rbac.ResourceDashboard))
				r.Get("/stats", h.DashboardStats)
				r.Get("/upcoming-tours", h.UpcomingTours)
			})

			r.With(h.Authorize(rbac.ResourceReports)).
				Get("/reports/sales/overview", h.SalesOverview)
		})
	})

	return r
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tourdesk",
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondProblem(w http.ResponseWriter, r *http.Request, p *problem.Problem) {
	p = p.WithRequestID(middleware.GetReqID(r.Context()))
	w.Header().Set("Content-Type", "application/problem+json")
	if p.RequestID != "" {
		w.Header().Set("X-Request-Id", p.RequestID)
	}
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

// decodeJSON parses the request body, rejecting unknown fields so a
// typo in a payload fails loudly instead of silently dropping data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

var conflictErrs = []error{
	directory.ErrDuplicateEmail,
	tenant.ErrOrganizationExists,
	identity.ErrUserAlreadyExists,
	booking.ErrInvalidTransition,
	booking.ErrBookingNotEditable,
	billing.ErrInvalidTransition,
	billing.ErrInvoiceNotEditable,
}

// errProblem maps a service error to a problem. pathErrs are the
// sentinels that mean the addressed resource itself is missing and map
// to 404; the same sentinel surfacing from another endpoint (a dangling
// reference in a payload) falls through to 400 instead.
func errProblem(err error, pathErrs ...error) *problem.Problem {
	for _, pe := range pathErrs {
		if errors.Is(err, pe) {
			return problem.NotFound(pe.Error())
		}
	}
	for _, ce := range conflictErrs {
		if errors.Is(err, ce) {
			return problem.Conflict(err.Error())
		}
	}
	return problem.Validation(err.Error())
}
