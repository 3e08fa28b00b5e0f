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

package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/id"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/money"
)

// ClientDirectory is the slice of the directory service a booking needs:
// confirming the client (and optional referring agent) exist within the
// organization.
type ClientDirectory interface {
	ClientExists(ctx context.Context, orgID, clientID string) error
	AgentExists(ctx context.Context, orgID, agentID string) error
}

// Allowed status transitions. Archival is separate from cancellation.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Service implements booking management.
type Service struct {
	repo        Repository
	directory   ClientDirectory
	auditLogger audit.Logger
}

func NewService(repo Repository, directory ClientDirectory, auditLogger audit.Logger) *Service {
	return &Service{repo: repo, directory: directory, auditLogger: auditLogger}
}

// CreateBooking validates and persists a new booking in pending status.
// The total is always recomputed server-side from the items.
func (s *Service) CreateBooking(ctx context.Context, b *Booking, actorID string) (*Booking, error) {
	if err := s.validate(ctx, b); err != nil {
		return nil, err
	}

	if b.Reference == "" {
		b.Reference = newReference(time.Now())
	} else {
		count, err := s.repo.CountByReference(ctx, b.OrganizationID, b.Reference)
		if err != nil {
			return nil, fmt.Errorf("failed to check booking reference: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("booking reference %q already in use", b.Reference)
		}
	}

	now := time.Now()
	b.ID = id.NewUUIDv7()
	b.Status = StatusPending
	b.TotalMinor = b.Total()
	b.CreatedAt = now
	b.UpdatedAt = now
	for i := range b.Items {
		b.Items[i].ID = id.NewUUIDv7()
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.audit(ctx, audit.TypeRecordCreated, b.OrganizationID, actorID, b.ID)
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, orgID, bookingID string) (*Booking, error) {
	return s.repo.GetByID(ctx, orgID, bookingID)
}

// UpdateBooking replaces the mutable fields of a pending or confirmed
// booking. Reference and status are not changed here.
func (s *Service) UpdateBooking(ctx context.Context, b *Booking, actorID string) (*Booking, error) {
	current, err := s.repo.GetByID(ctx, b.OrganizationID, b.ID)
	if err != nil {
		return nil, err
	}
	if !current.Editable() {
		return nil, ErrBookingNotEditable
	}
	if err := s.validate(ctx, b); err != nil {
		return nil, err
	}

	b.Reference = current.Reference
	b.Status = current.Status
	b.TotalMinor = b.Total()
	b.CreatedAt = current.CreatedAt
	b.UpdatedAt = time.Now()
	for i := range b.Items {
		if b.Items[i].ID == "" {
			b.Items[i].ID = id.NewUUIDv7()
		}
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.audit(ctx, audit.TypeRecordUpdated, b.OrganizationID, actorID, b.ID)
	return b, nil
}

// TransitionBooking moves a booking along its lifecycle.
func (s *Service) TransitionBooking(ctx context.Context, orgID, bookingID, next, actorID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, candidate := range transitions[b.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status, next)
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, orgID, bookingID, next, now); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	b.Status = next
	b.UpdatedAt = now

	s.audit(ctx, audit.TypeRecordUpdated, orgID, actorID, bookingID)
	return b, nil
}

// ArchiveBooking soft-deletes a booking.
func (s *Service) ArchiveBooking(ctx context.Context, orgID, bookingID, actorID string) error {
	if _, err := s.repo.GetByID(ctx, orgID, bookingID); err != nil {
		return err
	}
	if err := s.repo.Archive(ctx, orgID, bookingID, time.Now()); err != nil {
		return fmt.Errorf("failed to archive booking: %w", err)
	}

	s.audit(ctx, audit.TypeRecordArchived, orgID, actorID, bookingID)
	return nil
}

func (s *Service) ListBookings(ctx context.Context, orgID string, params listing.Params) ([]*Booking, int, error) {
	return s.repo.List(ctx, orgID, params)
}

// BookingExists confirms a booking belongs to the organization. Billing
// uses this to validate invoice references.
func (s *Service) BookingExists(ctx context.Context, orgID, bookingID string) error {
	_, err := s.repo.GetByID(ctx, orgID, bookingID)
	return err
}

func (s *Service) validate(ctx context.Context, b *Booking) error {
	if b.ClientID == "" {
		return fmt.Errorf("booking client_id is required")
	}
	if b.Title == "" {
		return fmt.Errorf("booking title is required")
	}
	if b.Pax <= 0 {
		return fmt.Errorf("booking pax must be positive")
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() || b.EndDate.Before(b.StartDate) {
		return fmt.Errorf("booking dates must be set and ordered")
	}
	if _, err := money.Exponent(b.Currency); err != nil {
		return fmt.Errorf("booking currency: %w", err)
	}
	for _, item := range b.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("booking item quantity must be positive")
		}
		if item.UnitMinor < 0 {
			return fmt.Errorf("booking item price must not be negative")
		}
		if item.Description == "" {
			return fmt.Errorf("booking item description is required")
		}
		if !validItemType(item.ItemType) {
			return fmt.Errorf("unknown booking item type %q", item.ItemType)
		}
	}

	if err := s.directory.ClientExists(ctx, b.OrganizationID, b.ClientID); err != nil {
		return fmt.Errorf("booking client: %w", err)
	}
	if b.AgentID != nil {
		if err := s.directory.AgentExists(ctx, b.OrganizationID, *b.AgentID); err != nil {
			return fmt.Errorf("booking agent: %w", err)
		}
	}
	return nil
}

func validItemType(t string) bool {
	switch t {
	case ItemHotel, ItemVehicle, ItemRestaurant, ItemEntranceFee,
		ItemDailyTour, ItemTransfer, ItemExtraExpense, ItemCustom:
		return true
	}
	return false
}

// newReference derives a human-readable booking code. Uniqueness comes
// from the UUID suffix; the date prefix is for operator convenience.
func newReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.NewUUIDv7(), "-", ""))
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), suffix[len(suffix)-6:])
}

func (s *Service) audit(ctx context.Context, eventType, orgID, actorID, bookingID string) {
	s.auditLogger.Log(ctx, audit.Event{
		Type:           eventType,
		OrganizationID: orgID,
		ActorID:        actorID,
		Resource:       "booking",
		Metadata:       map[string]any{audit.AttrEntity: bookingID},
	})
}
