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
	"github.com/tourdesk/tourdesk/internal/tenant"
)

// OrganizationRepository implements tenant.Repository
type OrganizationRepository struct {
	db *DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, name, legal_name, country, contact_email, phone,
	base_currency, status, created_at, updated_at, archived_at`

func scanOrganization(row pgx.Row) (*tenant.Organization, error) {
	var org tenant.Organization
	var archivedAt sql.NullTime
	err := row.Scan(
		&org.ID, &org.Name, &org.LegalName, &org.Country, &org.ContactEmail,
		&org.Phone, &org.BaseCurrency, &org.Status, &org.CreatedAt,
		&org.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		org.ArchivedAt = &archivedAt.Time
	}
	return &org, nil
}

// Create inserts a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *tenant.Organization) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO organizations (
			id, name, legal_name, country, contact_email, phone,
			base_currency, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		org.ID, org.Name, org.LegalName, org.Country, org.ContactEmail,
		org.Phone, org.BaseCurrency, org.Status, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*tenant.Organization, error) {
	org, err := scanOrganization(r.db.pool.QueryRow(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE id = $1 AND archived_at IS NULL
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// GetByName retrieves an active organization by name
func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*tenant.Organization, error) {
	org, err := scanOrganization(r.db.pool.QueryRow(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE name = $1 AND archived_at IS NULL
	`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization by name: %w", err)
	}
	return org, nil
}

// Update persists changes to an organization
func (r *OrganizationRepository) Update(ctx context.Context, org *tenant.Organization) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE organizations
		SET name = $2, legal_name = $3, country = $4, contact_email = $5,
			phone = $6, base_currency = $7, updated_at = $8
		WHERE id = $1 AND archived_at IS NULL
	`,
		org.ID, org.Name, org.LegalName, org.Country, org.ContactEmail,
		org.Phone, org.BaseCurrency, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrOrganizationNotFound
	}
	return nil
}

// Archive soft-deletes an organization
func (r *OrganizationRepository) Archive(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE organizations
		SET status = $2, archived_at = $3, updated_at = $3
		WHERE id = $1 AND archived_at IS NULL
	`, id, tenant.StatusArchived, at)
	if err != nil {
		return fmt.Errorf("failed to archive organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrOrganizationNotFound
	}
	return nil
}
