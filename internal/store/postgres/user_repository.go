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
	"github.com/tourdesk/tourdesk/internal/identity"
	"github.com/tourdesk/tourdesk/internal/listing"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, organization_id, email, full_name, role,
	failed_login_attempts, locked_until, created_at, updated_at, archived_at`

func scanUser(row pgx.Row) (*identity.User, error) {
	var user identity.User
	var lockedUntil, archivedAt sql.NullTime
	err := row.Scan(
		&user.ID, &user.OrganizationID, &user.Email, &user.FullName, &user.Role,
		&user.FailedLoginAttempts, &lockedUntil, &user.CreatedAt,
		&user.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	if lockedUntil.Valid {
		user.LockedUntil = &lockedUntil.Time
	}
	if archivedAt.Valid {
		user.ArchivedAt = &archivedAt.Time
	}
	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (
			id, organization_id, email, full_name, role,
			failed_login_attempts, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID, user.OrganizationID, user.Email, user.FullName, user.Role,
		user.FailedLoginAttempts, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpsertCredentials stores or replaces a user's password hash
func (r *UserRepository) UpsertCredentials(ctx context.Context, credentials *identity.Credentials) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at
	`, credentials.UserID, credentials.PasswordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert credentials: %w", err)
	}
	return nil
}

// GetByID retrieves a user within an organization
func (r *UserRepository) GetByID(ctx context.Context, orgID, id string) (*identity.User, error) {
	user, err := scanUser(r.db.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email within an organization
func (r *UserRepository) GetByEmail(ctx context.Context, orgID, email string) (*identity.User, error) {
	user, err := scanUser(r.db.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE organization_id = $1 AND email = $2 AND archived_at IS NULL
	`, orgID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Update persists profile changes
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE users
		SET full_name = $3, role = $4, updated_at = $5
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, user.OrganizationID, user.ID, user.FullName, user.Role, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateLockout records failed login bookkeeping
func (r *UserRepository) UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE users
		SET failed_login_attempts = $2, locked_until = $3, updated_at = $4
		WHERE id = $1
	`, userID, failedAttempts, lockedUntil, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update lockout state: %w", err)
	}
	return nil
}

// Archive soft-deletes a user
func (r *UserRepository) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE users
		SET archived_at = $3, updated_at = $3
		WHERE organization_id = $1 AND id = $2 AND archived_at IS NULL
	`, orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to archive user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// GetCredentials loads a user's password hash
func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	var creds identity.Credentials
	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, password_hash FROM credentials WHERE user_id = $1
	`, userID).Scan(&creds.UserID, &creds.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}

// List returns a page of users with the organization filter applied
func (r *UserRepository) List(ctx context.Context, orgID string, params listing.Params) ([]*identity.User, int, error) {
	b := listing.NewBuilder().
		Where("organization_id = ?", orgID).
		Status(params.Status).
		Equals(params.Filters).
		Search(params.Search, "email", "full_name")
	where, args := b.Clause()

	page, pageArgs := pageSQL(params, args)
	return selectAndCount(ctx, r.db,
		fmt.Sprintf(`SELECT %s FROM users %s %s`, userColumns, where, page), pageArgs,
		fmt.Sprintf(`SELECT COUNT(*) FROM users %s`, where), args,
		func(rows pgx.Rows) (*identity.User, error) { return scanUser(rows) },
	)
}
