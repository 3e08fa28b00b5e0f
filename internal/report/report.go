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

// Package report serves the read-only dashboard and finance aggregates.
// Each report is a handful of SQL aggregates issued concurrently;
// mixed-currency sums are normalized into the organization's base
// currency via the latest stored exchange rates.
package report

import (
	"context"
	"time"

	"github.com/tourdesk/tourdesk/internal/money"
)

// DashboardStats is the headline card set on the operator dashboard.
type DashboardStats struct {
	ActiveClients     int   `json:"active_clients"`
	ActiveProviders   int   `json:"active_providers"`
	PendingBookings   int   `json:"pending_bookings"`
	ConfirmedBookings int   `json:"confirmed_bookings"`
	ToursNext7Days    int   `json:"tours_next_7_days"`
	OpenInvoices      int   `json:"open_invoices"`
	RevenueMinor      int64 `json:"revenue_minor"`

	// Currency the revenue figure is expressed in, the organization's
	// base currency.
	Currency string `json:"currency"`
}

// UpcomingTour is one row of the departure board.
type UpcomingTour struct {
	BookingID  string    `json:"booking_id"`
	Reference  string    `json:"reference"`
	Title      string    `json:"title"`
	ClientName string    `json:"client_name"`
	StartDate  time.Time `json:"start_date"`
	Pax        int       `json:"pax"`
	Status     string    `json:"status"`
}

// FinanceSummary reports outstanding and settled positions converted
// into the base currency.
type FinanceSummary struct {
	BaseCurrency          string `json:"base_currency"`
	ReceivableOutstanding int64  `json:"receivable_outstanding_minor"`
	PayableOutstanding    int64  `json:"payable_outstanding_minor"`
	ReceivedThisMonth     int64  `json:"received_this_month_minor"`
	PaidThisMonth         int64  `json:"paid_this_month_minor"`
	NetPosition           int64  `json:"net_position_minor"`
}

// SalesBucket is one month of the sales overview.
type SalesBucket struct {
	Month        string `json:"month"`
	BookingCount int    `json:"booking_count"`
	RevenueMinor int64  `json:"revenue_minor"`
}

// SalesOverview is the rolling monthly sales report.
type SalesOverview struct {
	BaseCurrency string        `json:"base_currency"`
	Months       []SalesBucket `json:"months"`
}

// MonthlySales is the repository-level shape of one month before
// currency normalization.
type MonthlySales struct {
	Month    time.Time
	Bookings int
	Revenue  []money.Amount
}

// Repository runs the aggregate queries behind each report.
type Repository interface {
	CountActiveClients(ctx context.Context, orgID string) (int, error)
	CountActiveProviders(ctx context.Context, orgID string) (int, error)
	CountBookingsByStatus(ctx context.Context, orgID string) (map[string]int, error)
	CountToursBetween(ctx context.Context, orgID string, from, to time.Time) (int, error)
	CountOpenInvoices(ctx context.Context, orgID string) (int, error)
	UpcomingTours(ctx context.Context, orgID string, from time.Time, limit int) ([]*UpcomingTour, error)
	OutstandingByCurrency(ctx context.Context, orgID, direction string) ([]money.Amount, error)
	SettledBetweenByCurrency(ctx context.Context, orgID, direction string, from, to time.Time) ([]money.Amount, error)
	MonthlySales(ctx context.Context, orgID string, from, to time.Time) ([]*MonthlySales, error)
}
