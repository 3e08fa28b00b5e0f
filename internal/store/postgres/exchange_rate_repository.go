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
	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/listing"
)

// ExchangeRateRepository implements billing.RateRepository
type ExchangeRateRepository struct {
	db *DB
}

// NewExchangeRateRepository creates a new exchange rate repository
func NewExchangeRateRepository(db *DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

const rateColumns = `id, organization_id, base, quote, rate, effective_date, created_at`

func scanRate(row pgx.Row) (*billing.ExchangeRate, error) {
	var r billing.ExchangeRate
	err := row.Scan(&r.ID, &r.OrganizationID, &r.Base, &r.Quote, &r.Rate, &r.EffectiveDate, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new exchange rate quote
func (r *ExchangeRateRepository) Create(ctx context.Context, rate *billing.ExchangeRate) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO exchange_rates (id, organization_id, base, quote, rate, effective_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rate.ID, rate.OrganizationID, rate.Base, rate.Quote, rate.Rate, rate.EffectiveDate, rate.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert exchange rate: %w", err)
	}
	return nil
}

// Latest returns the newest quote for the pair at or before asOf
func (r *ExchangeRateRepository) Latest(ctx context.Context, orgID, base, quote string, asOf time.Time) (*billing.ExchangeRate, error) {
	rate, err := scanRate(r.db.pool.QueryRow(ctx, `
		SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE organization_id = $1 AND base = $2 AND quote = $3 AND effective_date <= $4
		ORDER BY effective_date DESC
		LIMIT 1
	`, orgID, base, quote, asOf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, billing.ErrRateNotFound
		}
		return nil, fmt.Errorf("failed to get latest exchange rate: %w", err)
	}
	return rate, nil
}

// List returns a page of stored quotes, newest first
func (r *ExchangeRateRepository) List(ctx context.Context, orgID string, params listing.Params) ([]*billing.ExchangeRate, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Equals(params.Filters)
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	return selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM exchange_rates %s %s`, rateColumns, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM exchange_rates %s`, where), args,
		func(rows pgx.Rows) (*billing.ExchangeRate, error) { return scanRate(rows) },
	)
}
