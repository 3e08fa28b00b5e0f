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

package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/money"
)

// BaseCurrencyResolver yields the organization's reporting currency.
type BaseCurrencyResolver interface {
	BaseCurrency(ctx context.Context, orgID string) (string, error)
}

// Converter normalizes amounts into a target currency. Satisfied by the
// billing service.
type Converter interface {
	ConvertAmount(ctx context.Context, orgID string, amount money.Amount, target string, asOf time.Time) (money.Amount, error)
}

// Service assembles the dashboard and finance reports.
type Service struct {
	repo      Repository
	tenants   BaseCurrencyResolver
	converter Converter
}

func NewService(repo Repository, tenants BaseCurrencyResolver, converter Converter) *Service {
	return &Service{repo: repo, tenants: tenants, converter: converter}
}

// DashboardStats runs the headline aggregates concurrently.
func (s *Service) DashboardStats(ctx context.Context, orgID string) (*DashboardStats, error) {
	base, err := s.tenants.BaseCurrency(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base currency: %w", err)
	}

	now := time.Now()
	stats := &DashboardStats{Currency: base}
	var byStatus map[string]int
	var received []money.Amount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.ActiveClients, err = s.repo.CountActiveClients(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActiveProviders, err = s.repo.CountActiveProviders(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.repo.CountBookingsByStatus(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ToursNext7Days, err = s.repo.CountToursBetween(gctx, orgID, now, now.AddDate(0, 0, 7))
		return err
	})
	g.Go(func() error {
		var err error
		stats.OpenInvoices, err = s.repo.CountOpenInvoices(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		received, err = s.repo.SettledBetweenByCurrency(gctx, orgID, billing.DirectionReceivable, monthStart(now), now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard stats: %w", err)
	}

	stats.PendingBookings = byStatus["pending"]
	stats.ConfirmedBookings = byStatus["confirmed"]
	revenue, err := s.normalize(ctx, orgID, received, base, now)
	if err != nil {
		return nil, err
	}
	stats.RevenueMinor = revenue
	return stats, nil
}

// UpcomingTours returns the departure board for the next 30 days.
func (s *Service) UpcomingTours(ctx context.Context, orgID string) ([]*UpcomingTour, error) {
	now := time.Now()
	tours, err := s.repo.UpcomingTours(ctx, orgID, now, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming tours: %w", err)
	}
	return tours, nil
}

// FinanceSummary converts each position into the base currency with the
// latest stored rates. The four underlying aggregates run concurrently.
func (s *Service) FinanceSummary(ctx context.Context, orgID string) (*FinanceSummary, error) {
	base, err := s.tenants.BaseCurrency(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base currency: %w", err)
	}

	now := time.Now()
	var recvOut, payOut, recvMonth, payMonth []money.Amount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recvOut, err = s.repo.OutstandingByCurrency(gctx, orgID, billing.DirectionReceivable)
		return err
	})
	g.Go(func() error {
		var err error
		payOut, err = s.repo.OutstandingByCurrency(gctx, orgID, billing.DirectionPayable)
		return err
	})
	g.Go(func() error {
		var err error
		recvMonth, err = s.repo.SettledBetweenByCurrency(gctx, orgID, billing.DirectionReceivable, monthStart(now), now)
		return err
	})
	g.Go(func() error {
		var err error
		payMonth, err = s.repo.SettledBetweenByCurrency(gctx, orgID, billing.DirectionPayable, monthStart(now), now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build finance summary: %w", err)
	}

	summary := &FinanceSummary{BaseCurrency: base}
	if summary.ReceivableOutstanding, err = s.normalize(ctx, orgID, recvOut, base, now); err != nil {
		return nil, err
	}
	if summary.PayableOutstanding, err = s.normalize(ctx, orgID, payOut, base, now); err != nil {
		return nil, err
	}
	if summary.ReceivedThisMonth, err = s.normalize(ctx, orgID, recvMonth, base, now); err != nil {
		return nil, err
	}
	if summary.PaidThisMonth, err = s.normalize(ctx, orgID, payMonth, base, now); err != nil {
		return nil, err
	}
	summary.NetPosition = summary.ReceivableOutstanding - summary.PayableOutstanding
	return summary, nil
}

// SalesOverview reports the trailing twelve months of confirmed sales.
func (s *Service) SalesOverview(ctx context.Context, orgID string) (*SalesOverview, error) {
	base, err := s.tenants.BaseCurrency(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base currency: %w", err)
	}

	now := time.Now()
	from := monthStart(now).AddDate(0, -11, 0)
	months, err := s.repo.MonthlySales(ctx, orgID, from, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly sales: %w", err)
	}

	overview := &SalesOverview{BaseCurrency: base, Months: make([]SalesBucket, 0, len(months))}
	for _, m := range months {
		revenue, err := s.normalize(ctx, orgID, m.Revenue, base, now)
		if err != nil {
			return nil, err
		}
		overview.Months = append(overview.Months, SalesBucket{
			Month:        m.Month.Format("2006-01"),
			BookingCount: m.Bookings,
			RevenueMinor: revenue,
		})
	}
	return overview, nil
}

// normalize converts per-currency sums into the base currency and folds
// them into a single minor-unit figure.
func (s *Service) normalize(ctx context.Context, orgID string, amounts []money.Amount, base string, asOf time.Time) (int64, error) {
	var total int64
	for _, a := range amounts {
		converted, err := s.converter.ConvertAmount(ctx, orgID, a, base, asOf)
		if err != nil {
			return 0, fmt.Errorf("failed to convert %s position: %w", a.Currency, err)
		}
		total += converted.Minor
	}
	return total, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
