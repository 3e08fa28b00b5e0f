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

// Package listing provides the shared list-endpoint machinery: query
// parameter parsing against a per-entity whitelist, the SQL WHERE/ORDER
// fragment builder, and the standard paginated response envelope.
//
// Every column name that reaches SQL comes from a whitelist in Options,
// never from the request. Request values travel only as bind parameters.
package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Archival states understood by the status filter.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusAll      = "all"
)

const (
	defaultPageSize = 25
	defaultMaxSize  = 100
)

// Sort is a single parsed sort key. Column is a SQL column taken from the
// whitelist, never from the request.
type Sort struct {
	Column string
	Desc   bool
}

// Params are the parsed, validated list parameters for one request.
type Params struct {
	Page     int
	PageSize int
	Sort     []Sort
	Search   string
	Status   string
	// Filters maps SQL column -> requested value for whitelisted equality
	// filters.
	Filters map[string]string

	// requested keeps the caller-facing names actually supplied, echoed
	// back in the response envelope.
	requested map[string]string
}

// Options describes what one entity's list endpoint accepts.
type Options struct {
	// DefaultSort is the caller-facing sort expression applied when the
	// request has none, e.g. "-created_at".
	DefaultSort string
	// MaxPageSize caps page_size; zero means the package default of 100.
	MaxPageSize int
	// SortFields maps caller-facing sort names to SQL columns.
	SortFields map[string]string
	// Filters maps caller-facing filter names to SQL columns compared by
	// equality.
	Filters map[string]string
}

// Parse reads page, page_size, sort, status, search and whitelisted
// entity filters from query values. Unknown sort fields are an error;
// unknown filter names are ignored (they may be params the handler reads
// itself). Page and page_size are clamped rather than rejected.
func Parse(q url.Values, opts Options) (Params, error) {
	maxSize := opts.MaxPageSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	p := Params{
		Page:      1,
		PageSize:  defaultPageSize,
		Status:    StatusActive,
		Filters:   map[string]string{},
		requested: map[string]string{},
	}

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.PageSize = n
		}
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}

	switch v := q.Get("status"); v {
	case "", StatusActive:
		p.Status = StatusActive
	case StatusArchived, StatusAll:
		p.Status = v
	default:
		return Params{}, fmt.Errorf("invalid status %q: must be active, archived or all", v)
	}

	p.Search = strings.TrimSpace(q.Get("search"))

	sortExpr := q.Get("sort")
	if sortExpr == "" {
		sortExpr = opts.DefaultSort
	}
	if sortExpr != "" {
		sorts, err := parseSort(sortExpr, opts.SortFields)
		if err != nil {
			return Params{}, err
		}
		p.Sort = sorts
	}

	for name, column := range opts.Filters {
		if v := q.Get(name); v != "" {
			p.Filters[column] = v
			p.requested[name] = v
		}
	}
	if p.Status != StatusActive {
		p.requested["status"] = p.Status
	}
	if p.Search != "" {
		p.requested["search"] = p.Search
	}

	return p, nil
}

func parseSort(expr string, allowed map[string]string) ([]Sort, error) {
	var sorts []Sort
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		if strings.HasPrefix(part, "-") {
			desc = true
			part = part[1:]
		}
		column, ok := allowed[part]
		if !ok {
			return nil, fmt.Errorf("cannot sort by %q", part)
		}
		sorts = append(sorts, Sort{Column: column, Desc: desc})
	}
	return sorts, nil
}

// Requested returns the caller-facing filters that were actually applied,
// for the envelope's filters echo.
func (p Params) Requested() map[string]string {
	return p.requested
}

// Offset returns the SQL OFFSET for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}
