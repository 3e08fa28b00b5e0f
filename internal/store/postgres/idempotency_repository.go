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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tourdesk/tourdesk/internal/idempotency"
)

// IdempotencyRepository implements idempotency.Store on PostgreSQL.
// Used when Redis is not configured; cmd/cleanup sweeps expired rows.
type IdempotencyRepository struct {
	db *DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Find loads a live record for the request scope
func (r *IdempotencyRepository) Find(ctx context.Context, orgID, method, path, key string) (*idempotency.Record, error) {
	var rec idempotency.Record
	err := r.db.pool.QueryRow(ctx, `
		SELECT organization_id, method, path, key, fingerprint, status, body, stored_at
		FROM idempotency_records
		WHERE organization_id = $1 AND method = $2 AND path = $3 AND key = $4
		  AND expires_at > $5
	`, orgID, method, path, key, time.Now()).Scan(
		&rec.OrganizationID, &rec.Method, &rec.Path, &rec.Key,
		&rec.Fingerprint, &rec.Status, &rec.Body, &rec.StoredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, idempotency.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}
	return &rec, nil
}

// Save stores a record, keeping the first writer on conflict
func (r *IdempotencyRepository) Save(ctx context.Context, rec *idempotency.Record, ttl time.Duration) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO idempotency_records (
			organization_id, method, path, key, fingerprint, status, body, stored_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (organization_id, method, path, key) DO NOTHING
	`,
		rec.OrganizationID, rec.Method, rec.Path, rec.Key, rec.Fingerprint,
		rec.Status, rec.Body, rec.StoredAt, rec.StoredAt.Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

// PurgeExpired deletes dead records and reports how many were removed
func (r *IdempotencyRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM idempotency_records WHERE expires_at <= $1
	`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge idempotency records: %w", err)
	}
	return tag.RowsAffected(), nil
}
