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

package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/id"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/money"
)

// BookingDirectory confirms a booking reference before a receivable
// invoice is raised against it.
type BookingDirectory interface {
	BookingExists(ctx context.Context, orgID, bookingID string) error
}

var transitions = map[string][]string{
	StatusDraft:  {StatusIssued, StatusVoid},
	StatusIssued: {StatusPaid, StatusVoid},
	StatusPaid:   {},
	StatusVoid:   {},
}

// Service implements invoice and exchange rate management.
type Service struct {
	invoices    InvoiceRepository
	rates       RateRepository
	bookings    BookingDirectory
	auditLogger audit.Logger
}

func NewService(invoices InvoiceRepository, rates RateRepository, bookings BookingDirectory, auditLogger audit.Logger) *Service {
	return &Service{invoices: invoices, rates: rates, bookings: bookings, auditLogger: auditLogger}
}

// CreateInvoice persists a new draft invoice. Numbers are assigned per
// organization, direction and year.
func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice, actorID string) (*Invoice, error) {
	if err := s.validate(ctx, inv); err != nil {
		return nil, err
	}

	now := time.Now()
	seq, err := s.invoices.NextNumber(ctx, inv.OrganizationID, inv.Direction, now.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	inv.ID = id.NewUUIDv7()
	inv.Number = formatNumber(inv.Direction, now.Year(), seq)
	inv.Status = StatusDraft
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.audit(ctx, audit.TypeRecordCreated, inv.OrganizationID, actorID, inv.ID)
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, orgID, invoiceID string) (*Invoice, error) {
	return s.invoices.GetByID(ctx, orgID, invoiceID)
}

// UpdateInvoice replaces the mutable fields of a draft invoice. Issued
// documents are immutable; corrections go through void and reissue.
func (s *Service) UpdateInvoice(ctx context.Context, inv *Invoice, actorID string) (*Invoice, error) {
	current, err := s.invoices.GetByID(ctx, inv.OrganizationID, inv.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusDraft {
		return nil, ErrInvoiceNotEditable
	}
	inv.Direction = current.Direction
	if err := s.validate(ctx, inv); err != nil {
		return nil, err
	}

	inv.Number = current.Number
	inv.Status = current.Status
	inv.CreatedAt = current.CreatedAt
	inv.UpdatedAt = time.Now()
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.audit(ctx, audit.TypeRecordUpdated, inv.OrganizationID, actorID, inv.ID)
	return inv, nil
}

// IssueInvoice moves a draft to issued and stamps the issue date.
func (s *Service) IssueInvoice(ctx context.Context, orgID, invoiceID, actorID string) (*Invoice, error) {
	return s.transition(ctx, orgID, invoiceID, StatusIssued, actorID, audit.TypeInvoiceIssued)
}

// MarkInvoicePaid records payment of an issued invoice.
func (s *Service) MarkInvoicePaid(ctx context.Context, orgID, invoiceID, actorID string) (*Invoice, error) {
	return s.transition(ctx, orgID, invoiceID, StatusPaid, actorID, audit.TypeInvoicePaid)
}

// VoidInvoice cancels a draft or issued invoice.
func (s *Service) VoidInvoice(ctx context.Context, orgID, invoiceID, actorID string) (*Invoice, error) {
	return s.transition(ctx, orgID, invoiceID, StatusVoid, actorID, audit.TypeInvoiceVoided)
}

func (s *Service) transition(ctx context.Context, orgID, invoiceID, next, actorID, eventType string) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, candidate := range transitions[inv.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, inv.Status, next)
	}

	now := time.Now()
	inv.Status = next
	inv.UpdatedAt = now
	switch next {
	case StatusIssued:
		inv.IssueDate = &now
	case StatusPaid:
		inv.PaidAt = &now
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	s.audit(ctx, eventType, orgID, actorID, invoiceID)
	return inv, nil
}

// ArchiveInvoice soft-deletes an invoice.
func (s *Service) ArchiveInvoice(ctx context.Context, orgID, invoiceID, actorID string) error {
	if _, err := s.invoices.GetByID(ctx, orgID, invoiceID); err != nil {
		return err
	}
	if err := s.invoices.Archive(ctx, orgID, invoiceID, time.Now()); err != nil {
		return fmt.Errorf("failed to archive invoice: %w", err)
	}

	s.audit(ctx, audit.TypeRecordArchived, orgID, actorID, invoiceID)
	return nil
}

func (s *Service) ListInvoices(ctx context.Context, orgID string, params listing.Params) ([]*Invoice, int, error) {
	return s.invoices.List(ctx, orgID, params)
}

// ListInvoicesByDirection backs the /invoices/receivable and
// /invoices/payable listing views by forcing the direction filter.
func (s *Service) ListInvoicesByDirection(ctx context.Context, orgID, direction string, params listing.Params) ([]*Invoice, int, error) {
	if direction != DirectionReceivable && direction != DirectionPayable {
		return nil, 0, fmt.Errorf("unknown invoice direction %q", direction)
	}
	if params.Filters == nil {
		params.Filters = map[string]string{}
	}
	params.Filters["direction"] = direction
	return s.invoices.List(ctx, orgID, params)
}

func (s *Service) validate(ctx context.Context, inv *Invoice) error {
	if inv.Direction != DirectionReceivable && inv.Direction != DirectionPayable {
		return fmt.Errorf("invoice direction must be receivable or payable")
	}
	if inv.CounterpartyID == "" {
		return fmt.Errorf("invoice counterparty_id is required")
	}
	if inv.AmountMinor <= 0 {
		return fmt.Errorf("invoice amount must be positive")
	}
	if _, err := money.Exponent(inv.Currency); err != nil {
		return fmt.Errorf("invoice currency: %w", err)
	}
	if inv.DueDate != nil && inv.IssueDate != nil && inv.DueDate.Before(*inv.IssueDate) {
		return fmt.Errorf("invoice due date precedes issue date")
	}
	if inv.BookingID != nil {
		if err := s.bookings.BookingExists(ctx, inv.OrganizationID, *inv.BookingID); err != nil {
			return fmt.Errorf("invoice booking: %w", err)
		}
	}
	return nil
}

// StoreRate records a new exchange rate quote for the organization.
func (s *Service) StoreRate(ctx context.Context, r *ExchangeRate, actorID string) (*ExchangeRate, error) {
	if _, err := money.Exponent(r.Base); err != nil {
		return nil, fmt.Errorf("rate base currency: %w", err)
	}
	if _, err := money.Exponent(r.Quote); err != nil {
		return nil, fmt.Errorf("rate quote currency: %w", err)
	}
	if r.Base == r.Quote {
		return nil, fmt.Errorf("rate base and quote must differ")
	}
	if r.Rate <= 0 {
		return nil, fmt.Errorf("rate must be positive")
	}
	if r.EffectiveDate.IsZero() {
		r.EffectiveDate = time.Now()
	}

	r.ID = id.NewUUIDv7()
	r.CreatedAt = time.Now()
	if err := s.rates.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to store exchange rate: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeRateStored,
		OrganizationID: r.OrganizationID,
		ActorID:        actorID,
		Resource:       "exchange_rate",
		Metadata: map[string]any{
			audit.AttrEntity: r.ID,
			"pair":           r.Base + "/" + r.Quote,
		},
	})
	return r, nil
}

// LatestRate returns the most recent quote for the pair at or before
// asOf. Identity pairs resolve to rate 1 without a lookup.
func (s *Service) LatestRate(ctx context.Context, orgID, base, quote string, asOf time.Time) (*ExchangeRate, error) {
	if base == quote {
		return &ExchangeRate{OrganizationID: orgID, Base: base, Quote: quote, Rate: 1, EffectiveDate: asOf}, nil
	}
	return s.rates.Latest(ctx, orgID, base, quote, asOf)
}

func (s *Service) ListRates(ctx context.Context, orgID string, params listing.Params) ([]*ExchangeRate, int, error) {
	return s.rates.List(ctx, orgID, params)
}

// ConvertAmount converts an amount into target using the latest stored
// rate. Used by the finance summary to normalize mixed currencies into
// the organization's base currency.
func (s *Service) ConvertAmount(ctx context.Context, orgID string, amount money.Amount, target string, asOf time.Time) (money.Amount, error) {
	if amount.Currency == target {
		return amount, nil
	}
	rate, err := s.LatestRate(ctx, orgID, amount.Currency, target, asOf)
	if err != nil {
		return money.Amount{}, err
	}
	return money.Convert(amount, target, rate.Rate)
}

func formatNumber(direction string, year, seq int) string {
	prefix := "INV"
	if direction == DirectionPayable {
		prefix = "PAY"
	}
	return fmt.Sprintf("%s-%d-%06d", prefix, year, seq)
}

func (s *Service) audit(ctx context.Context, eventType, orgID, actorID, invoiceID string) {
	s.auditLogger.Log(ctx, audit.Event{
		Type:           eventType,
		OrganizationID: orgID,
		ActorID:        actorID,
		Resource:       "invoice",
		Metadata:       map[string]any{audit.AttrEntity: invoiceID},
	})
}
