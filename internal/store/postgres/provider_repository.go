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
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/supplier"
)

// ProviderRepository implements supplier.ProviderRepository
type ProviderRepository struct {
	db *DB
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

const providerColumns = `id, organization_id, name, contact_name, email, phone,
	country, city, tax_id, notes, created_at, updated_at, archived_at`

func scanProvider(row pgx.Row) (*supplier.Provider, error) {
	var p supplier.Provider
	var archivedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.ContactName, &p.Email, &p.Phone,
		&p.Country, &p.City, &p.TaxID, &p.Notes, &p.CreatedAt, &p.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		p.ArchivedAt = &archivedAt.Time
	}
	return &p, nil
}

// Create inserts a new provider
func (r *ProviderRepository) Create(ctx context.Context, p *supplier.Provider) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO providers (
			id, organization_id, name, contact_name, email, phone,
			country, city, tax_id, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		p.ID, p.OrganizationID, p.Name, p.ContactName, p.Email, p.Phone,
		p.Country, p.City, p.TaxID, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert provider: %w", err)
	}
	return nil
}

// GetByID retrieves a provider within an organization
func (r *ProviderRepository) GetByID(ctx context.Context, orgID, id string) (*supplier.Provider, error) {
	p, err := scanProvider(r.db.pool.QueryRow(ctx, `
		SELECT `+providerColumns+`
		FROM providers
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, supplier.ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return p, nil
}

// Update persists changes to a provider
func (r *ProviderRepository) Update(ctx context.Context, p *supplier.Provider) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE providers
		SET name = $3, contact_name = $4, email = $5, phone = $6, country = $7,
			city = $8, tax_id = $9, notes = $10, updated_at = $11
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`,
		p.OrganizationID, p.ID, p.Name, p.ContactName, p.Email, p.Phone,
		p.Country, p.City, p.TaxID, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return supplier.ErrProviderNotFound
	}
	return nil
}

// Archive soft-deletes a provider
func (r *ProviderRepository) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE providers
		SET archived_at = $3, updated_at = $3
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return supplier.ErrProviderNotFound
	}
	return nil
}

// List returns a page of providers
func (r *ProviderRepository) List(ctx context.Context, orgID string, params listing.Params) ([]*supplier.Provider, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Status(params.Status).
		Equals(params.Filters).
		Search(params.Search, "name", "contact_name", "email")
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	return selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM providers %s %s`, providerColumns, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM providers %s`, where), args,
		func(rows pgx.Rows) (*supplier.Provider, error) { return scanProvider(rows) },
	)
}
