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

// AgentRepository implements directory.AgentRepository
type AgentRepository struct {
	db *DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *DB) *AgentRepository {
	return &AgentRepository{db: db}
}

const agentColumns = `id, organization_id, name, email, phone, country,
	commission_bps, notes, created_at, updated_at, archived_at`

func scanAgent(row pgx.Row) (*directory.Agent, error) {
	var a directory.Agent
	var archivedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.Name, &a.Email, &a.Phone, &a.Country,
		&a.CommissionBps, &a.Notes, &a.CreatedAt, &a.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		a.ArchivedAt = &archivedAt.Time
	}
	return &a, nil
}

// Create inserts a new agent
func (r *AgentRepository) Create(ctx context.Context, a *directory.Agent) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO agents (
			id, organization_id, name, email, phone, country,
			commission_bps, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		a.ID, a.OrganizationID, a.Name, a.Email, a.Phone, a.Country,
		a.CommissionBps, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert agent: %w", err)
	}
	return nil
}

// GetByID retrieves an agent within an organization
func (r *AgentRepository) GetByID(ctx context.Context, orgID, id string) (*directory.Agent, error) {
	a, err := scanAgent(r.db.pool.QueryRow(ctx, `
		SELECT `+agentColumns+`
		FROM agents
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return a, nil
}

// Update persists changes to an agent
func (r *AgentRepository) Update(ctx context.Context, a *directory.Agent) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE agents
		SET name = $3, email = $4, phone = $5, country = $6,
			commission_bps = $7, notes = $8, updated_at = $9
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`,
		a.OrganizationID, a.ID, a.Name, a.Email, a.Phone, a.Country,
		a.CommissionBps, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrAgentNotFound
	}
	return nil
}

// Archive soft-deletes an agent
func (r *AgentRepository) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE agents
		SET archived_at = $3, updated_at = $3
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrAgentNotFound
	}
	return nil
}

// List returns a page of agents
func (r *AgentRepository) List(ctx context.Context, orgID string, params listing.Params) ([]*directory.Agent, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Status(params.Status).
		Equals(params.Filters).
		Search(params.Search, "name", "email")
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	return selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM agents %s %s`, agentColumns, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM agents %s`, where), args,
		func(rows pgx.Rows) (*directory.Agent, error) { return scanAgent(rows) },
	)
}
