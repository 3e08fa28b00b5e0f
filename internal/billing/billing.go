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

// Package billing manages invoices and exchange rates. Receivable
// invoices are raised against bookings and collected from clients or
// agents; payable invoices record what the operator owes providers.
// All amounts are minor-unit integers.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/tourdesk/tourdesk/internal/listing"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrRateNotFound       = errors.New("exchange rate not found")
	ErrInvalidTransition  = errors.New("invalid invoice status transition")
	ErrInvoiceNotEditable = errors.New("invoice is not editable in its current status")
)

// Invoice directions.
const (
	DirectionReceivable = "receivable"
	DirectionPayable    = "payable"
)

// Invoice lifecycle statuses.
const (
	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusPaid   = "paid"
	StatusVoid   = "void"
)

// Invoice is a single receivable or payable document. CounterpartyID
// points at a client or agent for receivables and a provider for
// payables; BookingID links receivables to the trip being billed.
type Invoice struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Number         string     `json:"number"`
	Direction      string     `json:"direction"`
	Status         string     `json:"status"`
	BookingID      *string    `json:"booking_id,omitempty"`
	CounterpartyID string     `json:"counterparty_id"`
	AmountMinor    int64      `json:"amount_minor"`
	Currency       string     `json:"currency"`
	IssueDate      *time.Time `json:"issue_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// ExchangeRate is one stored quote for a currency pair. Rate is the
// multiplier applied to one major unit of Base to obtain Quote.
type ExchangeRate struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Base           string    `json:"base"`
	Quote          string    `json:"quote"`
	Rate           float64   `json:"rate"`
	EffectiveDate  time.Time `json:"effective_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, orgID, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Archive(ctx context.Context, orgID, id string, at time.Time) error
	List(ctx context.Context, orgID string, params listing.Params) ([]*Invoice, int, error)
	NextNumber(ctx context.Context, orgID, direction string, year int) (int, error)
}

// RateRepository persists exchange rates.
type RateRepository interface {
	Create(ctx context.Context, r *ExchangeRate) error
	Latest(ctx context.Context, orgID, base, quote string, asOf time.Time) (*ExchangeRate, error)
	List(ctx context.Context, orgID string, params listing.Params) ([]*ExchangeRate, int, error)
}
