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

// Package supplier manages providers and the offerings an operator buys
// from them: hotels, vehicles, restaurants, entrance fees, daily tours,
// transfers, guides and ad-hoc extra expenses. All offerings carry a
// default rate in minor currency units; bookings snapshot these rates.
package supplier

import (
	"context"
	"errors"
	"time"

	"github.com/tourdesk/tourdesk/internal/listing"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrOfferingNotFound = errors.New("offering not found")
)

// Provider is a third party the operator purchases services from. Every
// offering belongs to exactly one provider.
type Provider struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	ContactName    string     `json:"contact_name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Country        string     `json:"country,omitempty"`
	City           string     `json:"city,omitempty"`
	TaxID          string     `json:"tax_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Hotel is a provider-owned accommodation offering. RateMinor is the
// default nightly rate per room in minor units of Currency.
type Hotel struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	Name           string     `json:"name"`
	City           string     `json:"city,omitempty"`
	Stars          int        `json:"stars,omitempty"`
	BoardBasis     string     `json:"board_basis,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Vehicle is a provider-owned transport asset. RateMinor is the default
// daily hire rate.
type Vehicle struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	Name           string     `json:"name"`
	PlateNumber    string     `json:"plate_number,omitempty"`
	Capacity       int        `json:"capacity,omitempty"`
	VehicleType    string     `json:"vehicle_type,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Restaurant is a provider-owned dining offering. RateMinor is the
// default per-person menu rate.
type Restaurant struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	Name           string     `json:"name"`
	City           string     `json:"city,omitempty"`
	Cuisine        string     `json:"cuisine,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// EntranceFee is an admission charge for a site or attraction.
type EntranceFee struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	SiteName       string     `json:"site_name"`
	City           string     `json:"city,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// DailyTour is a scheduled excursion product sold to clients.
type DailyTour struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	Name           string     `json:"name"`
	City           string     `json:"city,omitempty"`
	DurationHours  int        `json:"duration_hours,omitempty"`
	Capacity       int        `json:"capacity,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Transfer is a point-to-point transport offering.
type Transfer struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	Name           string     `json:"name"`
	FromLocation   string     `json:"from_location,omitempty"`
	ToLocation     string     `json:"to_location,omitempty"`
	VehicleType    string     `json:"vehicle_type,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Guide is a licensed tour guide contracted through a provider.
// RateMinor is the default daily guiding rate; Languages is a
// comma-separated list of language codes.
type Guide struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	FullName       string     `json:"full_name"`
	Languages      string     `json:"languages,omitempty"`
	LicenseNumber  string     `json:"license_number,omitempty"`
	City           string     `json:"city,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// ExtraExpense is an ad-hoc cost item tied to a provider, such as a
// parking fee or a gratuity, priced per occurrence.
type ExtraExpense struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProviderID     string     `json:"provider_id"`
	Description    string     `json:"description"`
	Category       string     `json:"category,omitempty"`
	RateMinor      int64      `json:"rate_minor"`
	Currency       string     `json:"currency"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// ProviderRepository persists providers.
type ProviderRepository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, orgID, id string) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Archive(ctx context.Context, orgID, id string, at time.Time) error
	List(ctx context.Context, orgID string, params listing.Params) ([]*Provider, int, error)
}

// OfferingRepository persists one kind of provider-owned offering. The
// postgres layer supplies an implementation per table; the service is
// generic over the offering type.
type OfferingRepository[T any] interface {
	Create(ctx context.Context, o *T) error
	GetByID(ctx context.Context, orgID, id string) (*T, error)
	Update(ctx context.Context, o *T) error
	Archive(ctx context.Context, orgID, id string, at time.Time) error
	List(ctx context.Context, orgID string, params listing.Params) ([]*T, int, error)
}
