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

package listing

import (
	"fmt"
	"strings"
)

// Builder accumulates WHERE conditions with positional bind parameters.
// Conditions are written with ? placeholders and rewritten to $n in the
// order arguments were added, so repository code never hand-counts
// parameter numbers.
type Builder struct {
	conds []string
	args  []any
}

// NewBuilder returns an empty condition builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Where appends one condition. The number of ? placeholders must match
// the number of args.
func (b *Builder) Where(cond string, args ...any) *Builder {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
	return b
}

// Equals appends column = value for every whitelisted filter.
func (b *Builder) Equals(filters map[string]string) *Builder {
	for column, value := range filters {
		b.Where(column+" = ?", value)
	}
	return b
}

// Search appends a case-insensitive substring match across columns.
// No-op for an empty term.
func (b *Builder) Search(term string, columns ...string) *Builder {
	if term == "" || len(columns) == 0 {
		return b
	}
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE ?"
		b.args = append(b.args, "%"+escapeLike(term)+"%")
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
	return b
}

// Status appends the soft-delete condition for the archived_at column.
func (b *Builder) Status(status string) *Builder {
	switch status {
	case StatusArchived:
		b.conds = append(b.conds, "archived_at IS NOT NULL")
	case StatusAll:
		// no condition
	default:
		b.conds = append(b.conds, "archived_at IS NULL")
	}
	return b
}

// Clause renders the accumulated conditions as a WHERE clause with $n
// placeholders, plus the bind arguments. Returns "" when no condition
// was added.
func (b *Builder) Clause() (string, []any) {
	if len(b.conds) == 0 {
		return "", nil
	}
	joined := strings.Join(b.conds, " AND ")
	var sb strings.Builder
	n := 0
	for _, r := range joined {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return "WHERE " + sb.String(), b.args
}

// Args returns the bind arguments accumulated so far.
func (b *Builder) Args() []any {
	return b.args
}

// NextPlaceholder returns the $n placeholder that would follow the
// current arguments, for repositories that append LIMIT/OFFSET manually.
func (b *Builder) NextPlaceholder() int {
	return len(b.args) + 1
}

// OrderBy renders an ORDER BY clause from parsed sort keys. Columns come
// from the whitelist so interpolation is safe here.
func OrderBy(sorts []Sort) string {
	if len(sorts) == 0 {
		return ""
	}
	parts := make([]string, len(sorts))
	for i, s := range sorts {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts[i] = s.Column + " " + dir
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// escapeLike escapes LIKE metacharacters in a user-supplied search term.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
