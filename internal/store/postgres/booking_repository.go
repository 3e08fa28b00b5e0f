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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tourdesk/tourdesk/internal/booking"
	"github.com/tourdesk/tourdesk/internal/listing"
)

// BookingRepository implements booking.Repository
type BookingRepository struct {
	db *DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, organization_id, client_id, agent_id, reference, title,
	status, start_date, end_date, pax, currency, total_minor, notes,
	created_at, updated_at, archived_at`

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	var agentID sql.NullString
	var archivedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.OrganizationID, &b.ClientID, &agentID, &b.Reference, &b.Title,
		&b.Status, &b.StartDate, &b.EndDate, &b.Pax, &b.Currency, &b.TotalMinor,
		&b.Notes, &b.CreatedAt, &b.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	if agentID.Valid {
		b.AgentID = &agentID.String
	}
	if archivedAt.Valid {
		b.ArchivedAt = &archivedAt.Time
	}
	return &b, nil
}

// Create inserts a booking and its items in one transaction
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (
			id, organization_id, client_id, agent_id, reference, title,
			status, start_date, end_date, pax, currency, total_minor, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		b.ID, b.OrganizationID, b.ClientID, b.AgentID, b.Reference, b.Title,
		b.Status, b.StartDate, b.EndDate, b.Pax, b.Currency, b.TotalMinor,
		b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, bookingID string, items []booking.Item) error {
	for i, item := range items {
		var offeringID any
		if item.OfferingID != "" {
			offeringID = item.OfferingID
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO booking_items (id, booking_id, item_type, offering_id, description, quantity, unit_minor, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, item.ID, bookingID, item.ItemType, offeringID, item.Description, item.Quantity, item.UnitMinor, i)
		if err != nil {
			return fmt.Errorf("failed to insert booking item: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) loadItems(ctx context.Context, bookingID string) ([]booking.Item, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, item_type, offering_id, description, quantity, unit_minor
		FROM booking_items
		WHERE booking_id = $1
		ORDER BY position
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking items: %w", err)
	}
	defer rows.Close()

	items := []booking.Item{}
	for rows.Next() {
		var item booking.Item
		var offeringID sql.NullString
		if err := rows.Scan(&item.ID, &item.ItemType, &offeringID, &item.Description, &item.Quantity, &item.UnitMinor); err != nil {
			return nil, fmt.Errorf("failed to scan booking item: %w", err)
		}
		if offeringID.Valid {
			item.OfferingID = offeringID.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID retrieves a booking with its items
func (r *BookingRepository) GetByID(ctx context.Context, orgID, id string) (*booking.Booking, error) {
	b, err := scanBooking(r.db.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if b.Items, err = r.loadItems(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// Update replaces a booking's fields and rewrites its items
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET client_id = $3, agent_id = $4, title = $5, start_date = $6,
			end_date = $7, pax = $8, currency = $9, total_minor = $10,
			notes = $11, updated_at = $12
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`,
		b.OrganizationID, b.ID, b.ClientID, b.AgentID, b.Title, b.StartDate,
		b.EndDate, b.Pax, b.Currency, b.TotalMinor, b.Notes, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM booking_items WHERE booking_id = $1`, b.ID); err != nil {
		return fmt.Errorf("failed to clear booking items: %w", err)
	}
	if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateStatus moves a booking along its lifecycle
func (r *BookingRepository) UpdateStatus(ctx context.Context, orgID, id, status string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE bookings
		SET status = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id, status, at)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// Archive soft-deletes a booking
func (r *BookingRepository) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE bookings
		SET archived_at = $3, updated_at = $3
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// List returns a page of bookings with items attached
func (r *BookingRepository) List(ctx context.Context, orgID string, params listing.Params) ([]*booking.Booking, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Status(params.Status).
		Equals(params.Filters).
		Search(params.Search, "reference", "title")
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	bookings, total, err := selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM bookings %s %s`, bookingColumns, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM bookings %s`, where), args,
		func(rows pgx.Rows) (*booking.Booking, error) { return scanBooking(rows) },
	)
	if err != nil {
		return nil, 0, err
	}

	for _, bk := range bookings {
		if bk.Items, err = r.loadItems(ctx, bk.ID); err != nil {
			return nil, 0, err
		}
	}
	return bookings, total, nil
}

// CountByReference reports how many live bookings use a reference
func (r *BookingRepository) CountByReference(ctx context.Context, orgID, reference string) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE organization_id = $1 AND reference = $2 AND archived_at IS NULL
	`, orgID, reference).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by reference: %w", err)
	}
	return count, nil
}
