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
	"fmt"
	"strings"
	"time"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/id"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/rbac"
)

// Service provides identity-related business logic
type Service struct {
	repo               UserRepository
	hasher             *PasswordHasher
	auditLogger        audit.Logger
	lockoutMaxAttempts int
	lockoutDuration    time.Duration
}

// NewService creates a new identity service
func NewService(
	repo UserRepository,
	hasher *PasswordHasher,
	auditLogger audit.Logger,
	lockoutMaxAttempts int,
	lockoutDuration time.Duration,
) *Service {
	return &Service{
		repo:               repo,
		hasher:             hasher,
		auditLogger:        auditLogger,
		lockoutMaxAttempts: lockoutMaxAttempts,
		lockoutDuration:    lockoutDuration,
	}
}

// CreateUser provisions a user with credentials inside an organization.
func (s *Service) CreateUser(ctx context.Context, orgID, email, fullName, role, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !rbac.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if !isStrongPassword(password) {
		return nil, ErrWeakPassword
	}

	if existing, err := s.repo.GetByEmail(ctx, orgID, email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	now := time.Now()
	user := &User{
		ID:             id.NewUUIDv7(),
		OrganizationID: orgID,
		Email:          email,
		FullName:       fullName,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpsertCredentials(ctx, &Credentials{UserID: user.ID, PasswordHash: passwordHash}); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeUserCreated,
		OrganizationID: orgID,
		ActorID:        user.ID,
		Resource:       user.Email,
	})

	return user, nil
}

// Authenticate checks email/password within an organization, enforcing
// the failed-attempt lockout.
func (s *Service) Authenticate(ctx context.Context, orgID, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, orgID, strings.ToLower(email))
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:           audit.TypeLoginFailed,
			OrganizationID: orgID,
			Resource:       email,
			Metadata:       map[string]any{audit.AttrReason: "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		s.auditLogger.Log(ctx, audit.Event{
			Type:           audit.TypeLoginFailed,
			OrganizationID: orgID,
			ActorID:        user.ID,
			Resource:       "login",
			Metadata:       map[string]any{audit.AttrReason: "locked_out"},
		})
		return nil, ErrAccountLocked
	}

	credentials, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, credentials.PasswordHash)
	if err != nil || !valid {
		newAttempts := user.FailedLoginAttempts + 1
		var newLockedUntil *time.Time

		if newAttempts >= s.lockoutMaxAttempts {
			until := time.Now().Add(s.lockoutDuration)
			newLockedUntil = &until
			s.auditLogger.Log(ctx, audit.Event{
				Type:           audit.TypeUserLocked,
				OrganizationID: orgID,
				ActorID:        user.ID,
				Resource:       "login",
				Metadata:       map[string]any{audit.AttrAttempts: newAttempts},
			})
		}

		_ = s.repo.UpdateLockout(ctx, user.ID, newAttempts, newLockedUntil)

		s.auditLogger.Log(ctx, audit.Event{
			Type:           audit.TypeLoginFailed,
			OrganizationID: orgID,
			ActorID:        user.ID,
			Resource:       "login",
			Metadata: map[string]any{
				audit.AttrReason:   "invalid_password",
				audit.AttrAttempts: newAttempts,
			},
		})

		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		_ = s.repo.UpdateLockout(ctx, user.ID, 0, nil)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeLoginSuccess,
		OrganizationID: orgID,
		ActorID:        user.ID,
		Resource:       "login",
	})

	return user, nil
}

// GetUser retrieves a user within an organization
func (s *Service) GetUser(ctx context.Context, orgID, userID string) (*User, error) {
	return s.repo.GetByID(ctx, orgID, userID)
}

// UpdateUser updates name and role. Email is immutable.
func (s *Service) UpdateUser(ctx context.Context, orgID, userID, fullName, role string) (*User, error) {
	user, err := s.repo.GetByID(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if role != "" {
		if !rbac.ValidRole(role) {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}
	if fullName != "" {
		user.FullName = fullName
	}
	user.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the old password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, orgID, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, orgID, userID)
	if err != nil {
		return err
	}
	credentials, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		return ErrInvalidCredentials
	}
	valid, err := s.hasher.Verify(oldPassword, credentials.PasswordHash)
	if err != nil || !valid {
		return ErrInvalidCredentials
	}
	if !isStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpsertCredentials(ctx, &Credentials{UserID: user.ID, PasswordHash: passwordHash}); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypePasswordChanged,
		OrganizationID: orgID,
		ActorID:        user.ID,
		Resource:       "password",
	})

	return nil
}

// ArchiveUser soft-deletes a user account
func (s *Service) ArchiveUser(ctx context.Context, orgID, userID string) error {
	if _, err := s.repo.GetByID(ctx, orgID, userID); err != nil {
		return err
	}
	return s.repo.Archive(ctx, orgID, userID, time.Now())
}

// ListUsers lists users within an organization
func (s *Service) ListUsers(ctx context.Context, orgID string, params listing.Params) ([]*User, int, error) {
	return s.repo.List(ctx, orgID, params)
}

// isValidEmail is a minimal sanity check, not RFC 5322 validation.
func isValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t\n")
}

// isStrongPassword requires 10+ characters with some variety.
func isStrongPassword(password string) bool {
	if len(password) < 10 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}
