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

// Package tenant manages organizations, the unit of data isolation.
// Every business row in the system carries an organization_id and every
// query is scoped by it.
package tenant

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationExists   = errors.New("organization already exists")
)

// Status constants
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Organization is a tour operator using the CRM: the tenant.
type Organization struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	LegalName    string     `json:"legal_name,omitempty"`
	Country      string     `json:"country,omitempty"`
	ContactEmail string     `json:"contact_email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	BaseCurrency string     `json:"base_currency"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
}

// Repository defines the interface for organization storage
type Repository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	GetByName(ctx context.Context, name string) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	Archive(ctx context.Context, id string, at time.Time) error
}
