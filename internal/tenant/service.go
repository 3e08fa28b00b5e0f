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

package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/id"
	"github.com/tourdesk/tourdesk/internal/money"
)

// Service provides organization management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new organization service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// CreateOrganization registers a new tenant. BaseCurrency defaults to
// EUR and must be a known ISO code; it anchors all finance summaries.
func (s *Service) CreateOrganization(ctx context.Context, org *Organization, actorID string) (*Organization, error) {
	if org.Name == "" {
		return nil, fmt.Errorf("organization name is required")
	}
	if org.BaseCurrency == "" {
		org.BaseCurrency = "EUR"
	}
	if _, err := money.Exponent(org.BaseCurrency); err != nil {
		return nil, fmt.Errorf("invalid base currency: %w", err)
	}

	if existing, err := s.repo.GetByName(ctx, org.Name); err == nil && existing != nil {
		return nil, ErrOrganizationExists
	}

	now := time.Now()
	org.ID = id.NewUUIDv7()
	org.Status = StatusActive
	org.CreatedAt = now
	org.UpdatedAt = now

	if err := s.repo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeOrgCreated,
		OrganizationID: org.ID,
		ActorID:        actorID,
		Resource:       org.Name,
	})

	return org, nil
}

// GetOrganization retrieves an organization by ID
func (s *Service) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	return s.repo.GetByID(ctx, orgID)
}

// UpdateOrganization updates mutable organization fields
func (s *Service) UpdateOrganization(ctx context.Context, org *Organization, actorID string) (*Organization, error) {
	current, err := s.repo.GetByID(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	if org.Name == "" {
		return nil, fmt.Errorf("organization name is required")
	}
	if org.BaseCurrency == "" {
		org.BaseCurrency = current.BaseCurrency
	}
	if _, err := money.Exponent(org.BaseCurrency); err != nil {
		return nil, fmt.Errorf("invalid base currency: %w", err)
	}

	org.Status = current.Status
	org.CreatedAt = current.CreatedAt
	org.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeRecordUpdated,
		OrganizationID: org.ID,
		ActorID:        actorID,
		Resource:       "organization",
	})

	return org, nil
}

// ArchiveOrganization soft-deletes a tenant. Its rows stay in place but
// no request resolves to it anymore.
func (s *Service) ArchiveOrganization(ctx context.Context, orgID, actorID string) error {
	if _, err := s.repo.GetByID(ctx, orgID); err != nil {
		return err
	}
	if err := s.repo.Archive(ctx, orgID, time.Now()); err != nil {
		return fmt.Errorf("failed to archive organization: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeOrgArchived,
		OrganizationID: orgID,
		ActorID:        actorID,
		Resource:       "organization",
	})

	return nil
}

// BaseCurrency resolves the currency an organization reports in.
func (s *Service) BaseCurrency(ctx context.Context, orgID string) (string, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return "", err
	}
	return org.BaseCurrency, nil
}
