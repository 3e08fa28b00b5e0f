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
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/tourdesk/tourdesk/internal/listing"
)

// selectAndCount issues the page SELECT and the matching COUNT
// concurrently, as every list endpoint does.
func selectAndCount[T any](ctx context.Context, db *DB, selectSQL string, selectArgs []any, countSQL string, countArgs []any, scan func(rows pgx.Rows) (*T, error)) ([]*T, int, error) {
	var items []*T
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := db.pool.Query(gctx, selectSQL, selectArgs...)
		if err != nil {
			return fmt.Errorf("failed to query page: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	g.Go(func() error {
		if err := db.pool.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*T{}
	}
	return items, total, nil
}

// pageSQL renders the trailing ORDER BY / LIMIT / OFFSET for a page
// query, appending the two paging binds after the filter arguments.
func pageSQL(params listing.Params, args []any) (string, []any) {
	clause := listing.OrderBy(params.Sort)
	n := len(args)
	clause += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	return clause, append(args, params.PageSize, params.Offset())
}
