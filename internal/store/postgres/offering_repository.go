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
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/supplier"
)

// offeringTable describes one provider-owned offering table. The
// offering tables share the id/organization_id/provider_id spine and
// timestamps; bodyColumns lists what varies.
type offeringTable[T any] struct {
	table         string
	bodyColumns   []string
	searchColumns []string
	bodyValues    func(o *T) []any
	scan          func(row pgx.Row, archivedAt *sql.NullTime) (*T, error)
	setArchived   func(o *T, at time.Time)
}

// OfferingRepository implements supplier.OfferingRepository[T] for one
// offering table.
type OfferingRepository[T any] struct {
	db *DB
	t  offeringTable[T]
}

func (r *OfferingRepository[T]) columns() string {
	return "id, organization_id, provider_id, " +
		strings.Join(r.t.bodyColumns, ", ") +
		", created_at, updated_at, archived_at"
}

func (r *OfferingRepository[T]) scanRow(row pgx.Row) (*T, error) {
	var archivedAt sql.NullTime
	o, err := r.t.scan(row, &archivedAt)
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		r.t.setArchived(o, archivedAt.Time)
	}
	return o, nil
}

// Create inserts a new offering row
func (r *OfferingRepository[T]) Create(ctx context.Context, o *T) error {
	cols := append([]string{"id", "organization_id", "provider_id"}, r.t.bodyColumns...)
	cols = append(cols, "created_at", "updated_at")
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	_, err := r.db.pool.Exec(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			r.t.table, strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		r.t.bodyValues(o)...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.t.table, err)
	}
	return nil
}

// GetByID retrieves an offering within an organization
func (r *OfferingRepository[T]) GetByID(ctx context.Context, orgID, id string) (*T, error) {
	o, err := r.scanRow(r.db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s
			WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL`,
			r.columns(), r.t.table),
		orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, supplier.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("failed to get from %s: %w", r.t.table, err)
	}
	return o, nil
}

// Update persists changes to an offering
func (r *OfferingRepository[T]) Update(ctx context.Context, o *T) error {
	sets := make([]string, 0, len(r.t.bodyColumns)+2)
	// bodyValues yields id, organization_id, provider_id, body..., created_at, updated_at;
	// the UPDATE binds id and organization_id first, then provider_id and body.
	n := 3
	sets = append(sets, "provider_id = $3")
	for _, col := range r.t.bodyColumns {
		n++
		sets = append(sets, fmt.Sprintf("%s = $%d", col, n))
	}
	n++
	sets = append(sets, fmt.Sprintf("updated_at = $%d", n))

	values := r.t.bodyValues(o)
	// drop created_at, reorder to id, organization_id, provider_id, body..., updated_at
	args := []any{values[0], values[1], values[2]}
	args = append(args, values[3:len(values)-2]...)
	args = append(args, values[len(values)-1])

	tag, err := r.db.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET %s
			WHERE organization_id = $2 AND id = $1 AND archived_at IS NULL`,
			r.t.table, strings.Join(sets, ", ")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return supplier.ErrOfferingNotFound
	}
	return nil
}

// Archive soft-deletes an offering
func (r *OfferingRepository[T]) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET archived_at = $3, updated_at = $3
			WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL`, r.t.table),
		orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive in %s: %w", r.t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return supplier.ErrOfferingNotFound
	}
	return nil
}

// List returns a page of offerings
func (r *OfferingRepository[T]) List(ctx context.Context, orgID string, params listing.Params) ([]*T, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Status(params.Status).
		Equals(params.Filters).
		Search(params.Search, r.t.searchColumns...)
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	return selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM %s %s %s`, r.columns(), r.t.table, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.t.table, where), args,
		func(rows pgx.Rows) (*T, error) { return r.scanRow(rows) },
	)
}

// NewHotelRepository creates the hotels table repository
func NewHotelRepository(db *DB) *OfferingRepository[supplier.Hotel] {
	return &OfferingRepository[supplier.Hotel]{db: db, t: offeringTable[supplier.Hotel]{
		table:         "hotels",
		bodyColumns:   []string{"name", "city", "stars", "board_basis", "rate_minor", "currency", "notes"},
		searchColumns: []string{"name", "city"},
		bodyValues: func(o *supplier.Hotel) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.Name, o.City, o.Stars,
				o.BoardBasis, o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.Hotel, error) {
			var o supplier.Hotel
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.Name, &o.City,
				&o.Stars, &o.BoardBasis, &o.RateMinor, &o.Currency, &o.Notes,
				&o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.Hotel, at time.Time) { o.ArchivedAt = &at },
	}}
}

// NewVehicleRepository creates the vehicles table repository
func NewVehicleRepository(db *DB) *OfferingRepository[supplier.Vehicle] {
	return &OfferingRepository[supplier.Vehicle]{db: db, t: offeringTable[supplier.Vehicle]{
		table:         "vehicles",
		bodyColumns:   []string{"name", "plate_number", "capacity", "vehicle_type", "rate_minor", "currency", "notes"},
		searchColumns: []string{"name", "plate_number"},
		bodyValues: func(o *supplier.Vehicle) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.Name, o.PlateNumber,
				o.Capacity, o.VehicleType, o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.Vehicle, error) {
			var o supplier.Vehicle
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.Name, &o.PlateNumber,
				&o.Capacity, &o.VehicleType, &o.RateMinor, &o.Currency, &o.Notes,
				&o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.Vehicle, at time.Time) { o.ArchivedAt = &at },
	}}
}

// NewRestaurantRepository creates the restaurants table repository
func NewRestaurantRepository(db *DB) *OfferingRepository[supplier.Restaurant] {
	return &OfferingRepository[supplier.Restaurant]{db: db, t: offeringTable[supplier.Restaurant]{
		table:         "restaurants",
		bodyColumns:   []string{"name", "city", "cuisine", "rate_minor", "currency", "notes"},
		searchColumns: []string{"name", "city", "cuisine"},
		bodyValues: func(o *supplier.Restaurant) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.Name, o.City, o.Cuisine,
				o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.Restaurant, error) {
			var o supplier.Restaurant
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.Name, &o.City,
				&o.Cuisine, &o.RateMinor, &o.Currency, &o.Notes,
				&o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.Restaurant, at time.Time) { o.ArchivedAt = &at },
	}}
}

// NewEntranceFeeRepository creates the entrance_fees table repository
func NewEntranceFeeRepository(db *DB) *OfferingRepository[supplier.EntranceFee] {
	return &OfferingRepository[supplier.EntranceFee]{db: db, t: offeringTable[supplier.EntranceFee]{
		table:         "entrance_fees",
		bodyColumns:   []string{"site_name", "city", "rate_minor", "currency", "notes"},
		searchColumns: []string{"site_name", "city"},
		bodyValues: func(o *supplier.EntranceFee) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.SiteName, o.City,
				o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.EntranceFee, error) {
			var o supplier.EntranceFee
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.SiteName, &o.City,
				&o.RateMinor, &o.Currency, &o.Notes, &o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.EntranceFee, at time.Time) { o.ArchivedAt = &at },
	}}
}

// NewDailyTourRepository creates the daily_tours table repository
func NewDailyTourRepository(db *DB) *OfferingRepository[supplier.DailyTour] {
	return &OfferingRepository[supplier.DailyTour]{db: db, t: offeringTable[supplier.DailyTour]{
		table:         "daily_tours",
		bodyColumns:   []string{"name", "city", "duration_hours", "capacity", "rate_minor", "currency", "notes"},
		searchColumns: []string{"name", "city"},
		bodyValues: func(o *supplier.DailyTour) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.Name, o.City, o.DurationHours,
				o.Capacity, o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.DailyTour, error) {
			var o supplier.DailyTour
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.Name, &o.City,
				&o.DurationHours, &o.Capacity, &o.RateMinor, &o.Currency, &o.Notes,
				&o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.DailyTour, at time.Time) { o.ArchivedAt = &at },
	}}
}

// NewTransferRepository creates the transfers table repository
func NewTransferRepository(db *DB) *OfferingRepository[supplier.Transfer] {
	return &OfferingRepository[supplier.Transfer]{db: db, t: offeringTable[supplier.Transfer]{
		table:         "transfers",
		bodyColumns:   []string{"name", "from_location", "to_location", "vehicle_type", "rate_minor", "currency", "notes"},
		searchColumns: []string{"name", "from_location", "to_location"},
		bodyValues: func(o *supplier.Transfer) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.Name, o.FromLocation,
				o.ToLocation, o.VehicleType, o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.Transfer, error) {
			var o supplier.Transfer
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.Name, &o.FromLocation,
				&o.ToLocation, &o.VehicleType, &o.RateMinor, &o.Currency, &o.Notes,
				&o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.Transfer, at time.Time) { o.ArchivedAt = &at },
	}}
}

// NewGuideRepository creates the guides table repository
func NewGuideRepository(db *DB) *OfferingRepository[supplier.Guide] {
	return &OfferingRepository[supplier.Guide]{db: db, t: offeringTable[supplier.Guide]{
		table:         "guides",
		bodyColumns:   []string{"full_name", "languages", "license_number", "city", "rate_minor", "currency", "notes"},
		searchColumns: []string{"full_name", "city", "languages"},
		bodyValues: func(o *supplier.Guide) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.FullName, o.Languages,
				o.LicenseNumber, o.City, o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.Guide, error) {
			var o supplier.Guide
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.FullName, &o.Languages,
				&o.LicenseNumber, &o.City, &o.RateMinor, &o.Currency, &o.Notes,
				&o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.Guide, at time.Time) { o.ArchivedAt = &at },
	}}
}

// NewExtraExpenseRepository creates the extra_expenses table repository
func NewExtraExpenseRepository(db *DB) *OfferingRepository[supplier.ExtraExpense] {
	return &OfferingRepository[supplier.ExtraExpense]{db: db, t: offeringTable[supplier.ExtraExpense]{
		table:         "extra_expenses",
		bodyColumns:   []string{"description", "category", "rate_minor", "currency", "notes"},
		searchColumns: []string{"description", "category"},
		bodyValues: func(o *supplier.ExtraExpense) []any {
			return []any{o.ID, o.OrganizationID, o.ProviderID, o.Description, o.Category,
				o.RateMinor, o.Currency, o.Notes, o.CreatedAt, o.UpdatedAt}
		},
		scan: func(row pgx.Row, archivedAt *sql.NullTime) (*supplier.ExtraExpense, error) {
			var o supplier.ExtraExpense
			err := row.Scan(&o.ID, &o.OrganizationID, &o.ProviderID, &o.Description, &o.Category,
				&o.RateMinor, &o.Currency, &o.Notes, &o.CreatedAt, &o.UpdatedAt, archivedAt)
			return &o, err
		},
		setArchived: func(o *supplier.ExtraExpense, at time.Time) { o.ArchivedAt = &at },
	}}
}
