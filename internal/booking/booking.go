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

// Package booking manages client reservations. A booking bundles the
// services sold for one trip as line items priced in a single currency;
// receivable invoices are raised against bookings.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/tourdesk/tourdesk/internal/listing"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrBookingNotEditable = errors.New("booking is not editable in its current status")
)

// Booking lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ItemType identifies which offering catalogue a line item was drawn
// from. Free-form items use ItemCustom.
const (
	ItemHotel        = "hotel"
	ItemVehicle      = "vehicle"
	ItemRestaurant   = "restaurant"
	ItemEntranceFee  = "entrance_fee"
	ItemDailyTour    = "daily_tour"
	ItemTransfer     = "transfer"
	ItemExtraExpense = "extra_expense"
	ItemCustom       = "custom"
)

// Item is one priced service line within a booking. UnitMinor is the
// per-unit price in minor units of the booking currency, snapshotted at
// the time the item is added.
type Item struct {
	ID          string `json:"id"`
	ItemType    string `json:"item_type"`
	OfferingID  string `json:"offering_id,omitempty"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitMinor   int64  `json:"unit_minor"`
}

// Booking is a client's reserved package of services.
type Booking struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ClientID       string     `json:"client_id"`
	AgentID        *string    `json:"agent_id,omitempty"`
	Reference      string     `json:"reference"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Pax            int        `json:"pax"`
	Currency       string     `json:"currency"`
	TotalMinor     int64      `json:"total_minor"`
	Items          []Item     `json:"items"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Total recomputes the booking total from its items.
func (b *Booking) Total() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.UnitMinor * int64(item.Quantity)
	}
	return total
}

// Editable reports whether line items and dates may still change.
func (b *Booking) Editable() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Repository persists bookings together with their items.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, orgID, id string) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	UpdateStatus(ctx context.Context, orgID, id, status string, at time.Time) error
	Archive(ctx context.Context, orgID, id string, at time.Time) error
	List(ctx context.Context, orgID string, params listing.Params) ([]*Booking, int, error)
	CountByReference(ctx context.Context, orgID, reference string) (int, error)
}
