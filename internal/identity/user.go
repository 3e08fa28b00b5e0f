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

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/tourdesk/tourdesk/internal/listing"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet security requirements")
	ErrAccountLocked      = errors.New("account is locked")
	ErrInvalidRole        = errors.New("invalid role")
)

// User is a CRM operator account, always scoped to one organization.
// Role is one of the rbac package's role names.
type User struct {
	ID                  string     `json:"id"`
	OrganizationID      string     `json:"organization_id"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name"`
	Role                string     `json:"role"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	ArchivedAt          *time.Time `json:"archived_at,omitempty"`
}

// Credentials represents user authentication credentials
type Credentials struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	UpsertCredentials(ctx context.Context, credentials *Credentials) error
	GetByID(ctx context.Context, orgID, id string) (*User, error)
	GetByEmail(ctx context.Context, orgID, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error
	Archive(ctx context.Context, orgID, id string, at time.Time) error
	GetCredentials(ctx context.Context, userID string) (*Credentials, error)
	List(ctx context.Context, orgID string, params listing.Params) ([]*User, int, error)
}
