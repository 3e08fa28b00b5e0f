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
	"github.com/tourdesk/tourdesk/internal/directory"
	"github.com/tourdesk/tourdesk/internal/listing"
)

// ClientRepository implements directory.ClientRepository
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, organization_id, agent_id, full_name, email, phone,
	country, nationality, passport_number, notes, created_at, updated_at, archived_at`

func scanClient(row pgx.Row) (*directory.Client, error) {
	var c directory.Client
	var agentID sql.NullString
	var archivedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.OrganizationID, &agentID, &c.FullName, &c.Email, &c.Phone,
		&c.Country, &c.Nationality, &c.PassportNumber, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	if agentID.Valid {
		c.AgentID = &agentID.String
	}
	if archivedAt.Valid {
		c.ArchivedAt = &archivedAt.Time
	}
	return &c, nil
}

// Create inserts a new client
func (r *ClientRepository) Create(ctx context.Context, c *directory.Client) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO clients (
			id, organization_id, agent_id, full_name, email, phone,
			country, nationality, passport_number, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		c.ID, c.OrganizationID, c.AgentID, c.FullName, c.Email, c.Phone,
		c.Country, c.Nationality, c.PassportNumber, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// GetByID retrieves a client within an organization
func (r *ClientRepository) GetByID(ctx context.Context, orgID, id string) (*directory.Client, error) {
	c, err := scanClient(r.db.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// Update persists changes to a client
func (r *ClientRepository) Update(ctx context.Context, c *directory.Client) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE clients
		SET agent_id = $3, full_name = $4, email = $5, phone = $6, country = $7,
			nationality = $8, passport_number = $9, notes = $10, updated_at = $11
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`,
		c.OrganizationID, c.ID, c.AgentID, c.FullName, c.Email, c.Phone,
		c.Country, c.Nationality, c.PassportNumber, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrClientNotFound
	}
	return nil
}

// Archive soft-deletes a client
func (r *ClientRepository) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE clients
		SET archived_at = $3, updated_at = $3
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrClientNotFound
	}
	return nil
}

// List returns a page of clients
func (r *ClientRepository) List(ctx context.Context, orgID string, params listing.Params) ([]*directory.Client, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Status(params.Status).
		Equals(params.Filters).
		Search(params.Search, "full_name", "email", "passport_number")
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	return selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM clients %s %s`, clientColumns, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM clients %s`, where), args,
		func(rows pgx.Rows) (*directory.Client, error) { return scanClient(rows) },
	)
}
