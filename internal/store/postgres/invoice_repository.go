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
	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/listing"
)

// InvoiceRepository implements billing.InvoiceRepository
type InvoiceRepository struct {
	db *DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, organization_id, number, direction, status, booking_id,
	counterparty_id, amount_minor, currency, issue_date, due_date, paid_at,
	notes, created_at, updated_at, archived_at`

func scanInvoice(row pgx.Row) (*billing.Invoice, error) {
	var inv billing.Invoice
	var bookingID sql.NullString
	var issueDate, dueDate, paidAt, archivedAt sql.NullTime
	err := row.Scan(
		&inv.ID, &inv.OrganizationID, &inv.Number, &inv.Direction, &inv.Status,
		&bookingID, &inv.CounterpartyID, &inv.AmountMinor, &inv.Currency,
		&issueDate, &dueDate, &paidAt, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	if bookingID.Valid {
		inv.BookingID = &bookingID.String
	}
	if issueDate.Valid {
		inv.IssueDate = &issueDate.Time
	}
	if dueDate.Valid {
		inv.DueDate = &dueDate.Time
	}
	if paidAt.Valid {
		inv.PaidAt = &paidAt.Time
	}
	if archivedAt.Valid {
		inv.ArchivedAt = &archivedAt.Time
	}
	return &inv, nil
}

// Create inserts a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO invoices (
			id, organization_id, number, direction, status, booking_id,
			counterparty_id, amount_minor, currency, issue_date, due_date,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		inv.ID, inv.OrganizationID, inv.Number, inv.Direction, inv.Status,
		inv.BookingID, inv.CounterpartyID, inv.AmountMinor, inv.Currency,
		inv.IssueDate, inv.DueDate, inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice within an organization
func (r *InvoiceRepository) GetByID(ctx context.Context, orgID, id string) (*billing.Invoice, error) {
	inv, err := scanInvoice(r.db.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

// Update persists invoice changes including status stamps
func (r *InvoiceRepository) Update(ctx context.Context, inv *billing.Invoice) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE invoices
		SET status = $3, booking_id = $4, counterparty_id = $5, amount_minor = $6,
			currency = $7, issue_date = $8, due_date = $9, paid_at = $10,
			notes = $11, updated_at = $12
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`,
		inv.OrganizationID, inv.ID, inv.Status, inv.BookingID, inv.CounterpartyID,
		inv.AmountMinor, inv.Currency, inv.IssueDate, inv.DueDate, inv.PaidAt,
		inv.Notes, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

// Archive soft-deletes an invoice
func (r *InvoiceRepository) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE invoices
		SET archived_at = $3, updated_at = $3
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

// List returns a page of invoices
func (r *InvoiceRepository) List(ctx context.Context, orgID string, params listing.Params) ([]*billing.Invoice, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Status(params.Status).
		Equals(params.Filters).
		Search(params.Search, "number")
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	return selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM invoices %s %s`, invoiceColumns, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM invoices %s`, where), args,
		func(rows pgx.Rows) (*billing.Invoice, error) { return scanInvoice(rows) },
	)
}

// NextNumber allocates the next sequence number for a direction and
// year from a dedicated counter row. The single upsert statement is
// atomic, so concurrent creates in the same organization each get a
// distinct number, and archiving an invoice never frees one.
func (r *InvoiceRepository) NextNumber(ctx context.Context, orgID, direction string, year int) (int, error) {
	var seq int
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO invoice_counters (organization_id, direction, year, last_seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (organization_id, direction, year)
		DO UPDATE SET last_seq = invoice_counters.last_seq + 1
		RETURNING last_seq
	`, orgID, direction, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return seq, nil
}
