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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/money"
	"github.com/tourdesk/tourdesk/internal/report"
)

// ReportRepository implements report.Repository with aggregate queries
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) countWhere(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := r.db.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to run count aggregate: %w", err)
	}
	return count, nil
}

// CountActiveClients counts live client rows
func (r *ReportRepository) CountActiveClients(ctx context.Context, orgID string) (int, error) {
	return r.countWhere(ctx,
		`SELECT COUNT(*) FROM clients WHERE organization_id = $1 AND archived_at IS NULL`, orgID)
}

// CountActiveProviders counts live provider rows
func (r *ReportRepository) CountActiveProviders(ctx context.Context, orgID string) (int, error) {
	return r.countWhere(ctx,
		`SELECT COUNT(*) FROM providers WHERE organization_id = $1 AND archived_at IS NULL`, orgID)
}

// CountBookingsByStatus groups live bookings by lifecycle status
func (r *ReportRepository) CountBookingsByStatus(ctx context.Context, orgID string) (map[string]int, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM bookings
		WHERE organization_id = $1 AND archived_at IS NULL
		GROUP BY status
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to group bookings by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// CountToursBetween counts confirmed bookings departing in a window
func (r *ReportRepository) CountToursBetween(ctx context.Context, orgID string, from, to time.Time) (int, error) {
	return r.countWhere(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE organization_id = $1 AND archived_at IS NULL
		  AND status = $2 AND start_date >= $3 AND start_date < $4
	`, orgID, "confirmed", from, to)
}

// CountOpenInvoices counts issued, unpaid invoices
func (r *ReportRepository) CountOpenInvoices(ctx context.Context, orgID string) (int, error) {
	return r.countWhere(ctx, `
		SELECT COUNT(*) FROM invoices
		WHERE organization_id = $1 AND archived_at IS NULL AND status = $2
	`, orgID, billing.StatusIssued)
}

// UpcomingTours returns the departure board rows
func (r *ReportRepository) UpcomingTours(ctx context.Context, orgID string, from time.Time, limit int) ([]*report.UpcomingTour, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT b.id, b.reference, b.title, c.full_name, b.start_date, b.pax, b.status
		FROM bookings b
		JOIN clients c ON c.id = b.client_id
		WHERE b.organization_id = $1 AND b.archived_at IS NULL
		  AND b.status IN ('pending', 'confirmed')
		  AND b.start_date >= $2
		ORDER BY b.start_date
		LIMIT $3
	`, orgID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming tours: %w", err)
	}
	defer rows.Close()

	tours := []*report.UpcomingTour{}
	for rows.Next() {
		var t report.UpcomingTour
		if err := rows.Scan(&t.BookingID, &t.Reference, &t.Title, &t.ClientName, &t.StartDate, &t.Pax, &t.Status); err != nil {
			return nil, fmt.Errorf("failed to scan upcoming tour: %w", err)
		}
		tours = append(tours, &t)
	}
	return tours, rows.Err()
}

func scanAmounts(ctx context.Context, r *ReportRepository, query string, args ...any) ([]money.Amount, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query amount aggregate: %w", err)
	}
	defer rows.Close()

	amounts := []money.Amount{}
	for rows.Next() {
		var currency string
		var minor int64
		if err := rows.Scan(&currency, &minor); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		a, err := money.New(currency, minor)
		if err != nil {
			return nil, fmt.Errorf("stored amount in unknown currency: %w", err)
		}
		amounts = append(amounts, a)
	}
	return amounts, rows.Err()
}

// OutstandingByCurrency sums issued invoices per currency
func (r *ReportRepository) OutstandingByCurrency(ctx context.Context, orgID, direction string) ([]money.Amount, error) {
	return scanAmounts(ctx, r, `
		SELECT currency, COALESCE(SUM(amount_minor), 0)
		FROM invoices
		WHERE organization_id = $1 AND archived_at IS NULL
		  AND direction = $2 AND status = $3
		GROUP BY currency
	`, orgID, direction, billing.StatusIssued)
}

// SettledBetweenByCurrency sums invoices paid inside a window per currency
func (r *ReportRepository) SettledBetweenByCurrency(ctx context.Context, orgID, direction string, from, to time.Time) ([]money.Amount, error) {
	return scanAmounts(ctx, r, `
		SELECT currency, COALESCE(SUM(amount_minor), 0)
		FROM invoices
		WHERE organization_id = $1 AND archived_at IS NULL
		  AND direction = $2 AND status = $3
		  AND paid_at >= $4 AND paid_at <= $5
		GROUP BY currency
	`, orgID, direction, billing.StatusPaid, from, to)
}

// MonthlySales buckets confirmed and completed bookings by month
func (r *ReportRepository) MonthlySales(ctx context.Context, orgID string, from, to time.Time) ([]*report.MonthlySales, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT date_trunc('month', start_date) AS month, currency,
			COUNT(*), COALESCE(SUM(total_minor), 0)
		FROM bookings
		WHERE organization_id = $1 AND archived_at IS NULL
		  AND status IN ('confirmed', 'completed')
		  AND start_date >= $2 AND start_date <= $3
		GROUP BY month, currency
		ORDER BY month
	`, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly sales: %w", err)
	}
	defer rows.Close()

	byMonth := map[time.Time]*report.MonthlySales{}
	order := []time.Time{}
	for rows.Next() {
		var month time.Time
		var currency string
		var count int
		var minor int64
		if err := rows.Scan(&month, &currency, &count, &minor); err != nil {
			return nil, fmt.Errorf("failed to scan monthly sales: %w", err)
		}
		a, err := money.New(currency, minor)
		if err != nil {
			return nil, fmt.Errorf("stored amount in unknown currency: %w", err)
		}
		bucket, ok := byMonth[month]
		if !ok {
			bucket = &report.MonthlySales{Month: month}
			byMonth[month] = bucket
			order = append(order, month)
		}
		bucket.Bookings += count
		bucket.Revenue = append(bucket.Revenue, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	months := make([]*report.MonthlySales, 0, len(order))
	for _, m := range order {
		months = append(months, byMonth[m])
	}
	return months, nil
}
