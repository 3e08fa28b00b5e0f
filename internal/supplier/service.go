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

package supplier

import (
	"context"
	"fmt"
	"time"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/id"
	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/money"
)

// Repositories bundles the per-table stores the service operates on.
type Repositories struct {
	Providers     ProviderRepository
	Hotels        OfferingRepository[Hotel]
	Vehicles      OfferingRepository[Vehicle]
	Restaurants   OfferingRepository[Restaurant]
	EntranceFees  OfferingRepository[EntranceFee]
	DailyTours    OfferingRepository[DailyTour]
	Transfers     OfferingRepository[Transfer]
	Guides        OfferingRepository[Guide]
	ExtraExpenses OfferingRepository[ExtraExpense]
}

// Service implements provider and offering management.
type Service struct {
	repos       Repositories
	auditLogger audit.Logger
}

func NewService(repos Repositories, auditLogger audit.Logger) *Service {
	return &Service{repos: repos, auditLogger: auditLogger}
}

// CreateProvider registers a new provider for the organization
func (s *Service) CreateProvider(ctx context.Context, p *Provider, actorID string) (*Provider, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("provider name is required")
	}

	now := time.Now()
	p.ID = id.NewUUIDv7()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repos.Providers.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	s.audit(ctx, audit.TypeRecordCreated, p.OrganizationID, actorID, "provider", p.ID)
	return p, nil
}

func (s *Service) GetProvider(ctx context.Context, orgID, providerID string) (*Provider, error) {
	return s.repos.Providers.GetByID(ctx, orgID, providerID)
}

// UpdateProvider applies changes to an existing provider
func (s *Service) UpdateProvider(ctx context.Context, p *Provider, actorID string) (*Provider, error) {
	current, err := s.repos.Providers.GetByID(ctx, p.OrganizationID, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("provider name is required")
	}

	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now()
	if err := s.repos.Providers.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}

	s.audit(ctx, audit.TypeRecordUpdated, p.OrganizationID, actorID, "provider", p.ID)
	return p, nil
}

// ArchiveProvider soft-deletes a provider. Offerings that reference it
// remain readable so historical bookings keep resolving.
func (s *Service) ArchiveProvider(ctx context.Context, orgID, providerID, actorID string) error {
	if _, err := s.repos.Providers.GetByID(ctx, orgID, providerID); err != nil {
		return err
	}
	if err := s.repos.Providers.Archive(ctx, orgID, providerID, time.Now()); err != nil {
		return fmt.Errorf("failed to archive provider: %w", err)
	}

	s.audit(ctx, audit.TypeRecordArchived, orgID, actorID, "provider", providerID)
	return nil
}

func (s *Service) ListProviders(ctx context.Context, orgID string, params listing.Params) ([]*Provider, int, error) {
	return s.repos.Providers.List(ctx, orgID, params)
}

// offeringMeta describes the per-type pieces the generic CRUD helpers
// cannot derive: the audit resource name and field accessors.
type offeringMeta[T any] struct {
	resource string
	validate func(o *T) error
	ids      func(o *T) (entityID, orgID, providerID string)
	stamp    func(o *T, entityID string, createdAt, updatedAt time.Time)
	touched  func(o *T) time.Time
}

func validateRate(label string, rateMinor int64, currency string) error {
	if rateMinor < 0 {
		return fmt.Errorf("%s rate must not be negative", label)
	}
	if _, err := money.Exponent(currency); err != nil {
		return fmt.Errorf("%s currency: %w", label, err)
	}
	return nil
}

func createOffering[T any](ctx context.Context, s *Service, repo OfferingRepository[T], meta offeringMeta[T], o *T, actorID string) (*T, error) {
	if err := meta.validate(o); err != nil {
		return nil, err
	}
	_, orgID, providerID := meta.ids(o)
	if _, err := s.repos.Providers.GetByID(ctx, orgID, providerID); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	now := time.Now()
	entityID := id.NewUUIDv7()
	meta.stamp(o, entityID, now, now)
	if err := repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", meta.resource, err)
	}

	s.audit(ctx, audit.TypeRecordCreated, orgID, actorID, meta.resource, entityID)
	return o, nil
}

func updateOffering[T any](ctx context.Context, s *Service, repo OfferingRepository[T], meta offeringMeta[T], o *T, actorID string) (*T, error) {
	entityID, orgID, providerID := meta.ids(o)
	current, err := repo.GetByID(ctx, orgID, entityID)
	if err != nil {
		return nil, err
	}
	if err := meta.validate(o); err != nil {
		return nil, err
	}
	if _, err := s.repos.Providers.GetByID(ctx, orgID, providerID); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	meta.stamp(o, entityID, meta.touched(current), time.Now())
	if err := repo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", meta.resource, err)
	}

	s.audit(ctx, audit.TypeRecordUpdated, orgID, actorID, meta.resource, entityID)
	return o, nil
}

func archiveOffering[T any](ctx context.Context, s *Service, repo OfferingRepository[T], meta offeringMeta[T], orgID, entityID, actorID string) error {
	if _, err := repo.GetByID(ctx, orgID, entityID); err != nil {
		return err
	}
	if err := repo.Archive(ctx, orgID, entityID, time.Now()); err != nil {
		return fmt.Errorf("failed to archive %s: %w", meta.resource, err)
	}

	s.audit(ctx, audit.TypeRecordArchived, orgID, actorID, meta.resource, entityID)
	return nil
}

func (s *Service) audit(ctx context.Context, eventType, orgID, actorID, resource, entityID string) {
	s.auditLogger.Log(ctx, audit.Event{
		Type:           eventType,
		OrganizationID: orgID,
		ActorID:        actorID,
		Resource:       resource,
		Metadata:       map[string]any{audit.AttrEntity: entityID},
	})
}

var hotelMeta = offeringMeta[Hotel]{
	resource: "hotel",
	validate: func(o *Hotel) error {
		if o.Name == "" {
			return fmt.Errorf("hotel name is required")
		}
		if o.Stars < 0 || o.Stars > 5 {
			return fmt.Errorf("hotel stars must be between 0 and 5")
		}
		return validateRate("hotel", o.RateMinor, o.Currency)
	},
	ids: func(o *Hotel) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *Hotel, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *Hotel) time.Time { return o.CreatedAt },
}

var vehicleMeta = offeringMeta[Vehicle]{
	resource: "vehicle",
	validate: func(o *Vehicle) error {
		if o.Name == "" {
			return fmt.Errorf("vehicle name is required")
		}
		if o.Capacity < 0 {
			return fmt.Errorf("vehicle capacity must not be negative")
		}
		return validateRate("vehicle", o.RateMinor, o.Currency)
	},
	ids: func(o *Vehicle) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *Vehicle, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *Vehicle) time.Time { return o.CreatedAt },
}

var restaurantMeta = offeringMeta[Restaurant]{
	resource: "restaurant",
	validate: func(o *Restaurant) error {
		if o.Name == "" {
			return fmt.Errorf("restaurant name is required")
		}
		return validateRate("restaurant", o.RateMinor, o.Currency)
	},
	ids: func(o *Restaurant) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *Restaurant, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *Restaurant) time.Time { return o.CreatedAt },
}

var entranceFeeMeta = offeringMeta[EntranceFee]{
	resource: "entrance_fee",
	validate: func(o *EntranceFee) error {
		if o.SiteName == "" {
			return fmt.Errorf("entrance fee site_name is required")
		}
		return validateRate("entrance fee", o.RateMinor, o.Currency)
	},
	ids: func(o *EntranceFee) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *EntranceFee, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *EntranceFee) time.Time { return o.CreatedAt },
}

var dailyTourMeta = offeringMeta[DailyTour]{
	resource: "daily_tour",
	validate: func(o *DailyTour) error {
		if o.Name == "" {
			return fmt.Errorf("daily tour name is required")
		}
		if o.Capacity < 0 {
			return fmt.Errorf("daily tour capacity must not be negative")
		}
		return validateRate("daily tour", o.RateMinor, o.Currency)
	},
	ids: func(o *DailyTour) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *DailyTour, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *DailyTour) time.Time { return o.CreatedAt },
}

var transferMeta = offeringMeta[Transfer]{
	resource: "transfer",
	validate: func(o *Transfer) error {
		if o.Name == "" {
			return fmt.Errorf("transfer name is required")
		}
		return validateRate("transfer", o.RateMinor, o.Currency)
	},
	ids: func(o *Transfer) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *Transfer, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *Transfer) time.Time { return o.CreatedAt },
}

var guideMeta = offeringMeta[Guide]{
	resource: "guide",
	validate: func(o *Guide) error {
		if o.FullName == "" {
			return fmt.Errorf("guide full_name is required")
		}
		return validateRate("guide", o.RateMinor, o.Currency)
	},
	ids: func(o *Guide) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *Guide, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *Guide) time.Time { return o.CreatedAt },
}

var extraExpenseMeta = offeringMeta[ExtraExpense]{
	resource: "extra_expense",
	validate: func(o *ExtraExpense) error {
		if o.Description == "" {
			return fmt.Errorf("extra expense description is required")
		}
		return validateRate("extra expense", o.RateMinor, o.Currency)
	},
	ids: func(o *ExtraExpense) (string, string, string) { return o.ID, o.OrganizationID, o.ProviderID },
	stamp: func(o *ExtraExpense, id string, createdAt, updatedAt time.Time) {
		o.ID, o.CreatedAt, o.UpdatedAt = id, createdAt, updatedAt
	},
	touched: func(o *ExtraExpense) time.Time { return o.CreatedAt },
}

func (s *Service) CreateHotel(ctx context.Context, o *Hotel, actorID string) (*Hotel, error) {
	return createOffering(ctx, s, s.repos.Hotels, hotelMeta, o, actorID)
}

func (s *Service) GetHotel(ctx context.Context, orgID, id string) (*Hotel, error) {
	return s.repos.Hotels.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateHotel(ctx context.Context, o *Hotel, actorID string) (*Hotel, error) {
	return updateOffering(ctx, s, s.repos.Hotels, hotelMeta, o, actorID)
}

func (s *Service) ArchiveHotel(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.Hotels, hotelMeta, orgID, id, actorID)
}

func (s *Service) ListHotels(ctx context.Context, orgID string, params listing.Params) ([]*Hotel, int, error) {
	return s.repos.Hotels.List(ctx, orgID, params)
}

func (s *Service) CreateVehicle(ctx context.Context, o *Vehicle, actorID string) (*Vehicle, error) {
	return createOffering(ctx, s, s.repos.Vehicles, vehicleMeta, o, actorID)
}

func (s *Service) GetVehicle(ctx context.Context, orgID, id string) (*Vehicle, error) {
	return s.repos.Vehicles.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateVehicle(ctx context.Context, o *Vehicle, actorID string) (*Vehicle, error) {
	return updateOffering(ctx, s, s.repos.Vehicles, vehicleMeta, o, actorID)
}

func (s *Service) ArchiveVehicle(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.Vehicles, vehicleMeta, orgID, id, actorID)
}

func (s *Service) ListVehicles(ctx context.Context, orgID string, params listing.Params) ([]*Vehicle, int, error) {
	return s.repos.Vehicles.List(ctx, orgID, params)
}

func (s *Service) CreateRestaurant(ctx context.Context, o *Restaurant, actorID string) (*Restaurant, error) {
	return createOffering(ctx, s, s.repos.Restaurants, restaurantMeta, o, actorID)
}

func (s *Service) GetRestaurant(ctx context.Context, orgID, id string) (*Restaurant, error) {
	return s.repos.Restaurants.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateRestaurant(ctx context.Context, o *Restaurant, actorID string) (*Restaurant, error) {
	return updateOffering(ctx, s, s.repos.Restaurants, restaurantMeta, o, actorID)
}

func (s *Service) ArchiveRestaurant(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.Restaurants, restaurantMeta, orgID, id, actorID)
}

func (s *Service) ListRestaurants(ctx context.Context, orgID string, params listing.Params) ([]*Restaurant, int, error) {
	return s.repos.Restaurants.List(ctx, orgID, params)
}

func (s *Service) CreateEntranceFee(ctx context.Context, o *EntranceFee, actorID string) (*EntranceFee, error) {
	return createOffering(ctx, s, s.repos.EntranceFees, entranceFeeMeta, o, actorID)
}

func (s *Service) GetEntranceFee(ctx context.Context, orgID, id string) (*EntranceFee, error) {
	return s.repos.EntranceFees.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateEntranceFee(ctx context.Context, o *EntranceFee, actorID string) (*EntranceFee, error) {
	return updateOffering(ctx, s, s.repos.EntranceFees, entranceFeeMeta, o, actorID)
}

func (s *Service) ArchiveEntranceFee(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.EntranceFees, entranceFeeMeta, orgID, id, actorID)
}

func (s *Service) ListEntranceFees(ctx context.Context, orgID string, params listing.Params) ([]*EntranceFee, int, error) {
	return s.repos.EntranceFees.List(ctx, orgID, params)
}

func (s *Service) CreateDailyTour(ctx context.Context, o *DailyTour, actorID string) (*DailyTour, error) {
	return createOffering(ctx, s, s.repos.DailyTours, dailyTourMeta, o, actorID)
}

func (s *Service) GetDailyTour(ctx context.Context, orgID, id string) (*DailyTour, error) {
	return s.repos.DailyTours.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateDailyTour(ctx context.Context, o *DailyTour, actorID string) (*DailyTour, error) {
	return updateOffering(ctx, s, s.repos.DailyTours, dailyTourMeta, o, actorID)
}

func (s *Service) ArchiveDailyTour(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.DailyTours, dailyTourMeta, orgID, id, actorID)
}

func (s *Service) ListDailyTours(ctx context.Context, orgID string, params listing.Params) ([]*DailyTour, int, error) {
	return s.repos.DailyTours.List(ctx, orgID, params)
}

func (s *Service) CreateTransfer(ctx context.Context, o *Transfer, actorID string) (*Transfer, error) {
	return createOffering(ctx, s, s.repos.Transfers, transferMeta, o, actorID)
}

func (s *Service) GetTransfer(ctx context.Context, orgID, id string) (*Transfer, error) {
	return s.repos.Transfers.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateTransfer(ctx context.Context, o *Transfer, actorID string) (*Transfer, error) {
	return updateOffering(ctx, s, s.repos.Transfers, transferMeta, o, actorID)
}

func (s *Service) ArchiveTransfer(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.Transfers, transferMeta, orgID, id, actorID)
}

func (s *Service) ListTransfers(ctx context.Context, orgID string, params listing.Params) ([]*Transfer, int, error) {
	return s.repos.Transfers.List(ctx, orgID, params)
}

func (s *Service) CreateGuide(ctx context.Context, o *Guide, actorID string) (*Guide, error) {
	return createOffering(ctx, s, s.repos.Guides, guideMeta, o, actorID)
}

func (s *Service) GetGuide(ctx context.Context, orgID, id string) (*Guide, error) {
	return s.repos.Guides.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateGuide(ctx context.Context, o *Guide, actorID string) (*Guide, error) {
	return updateOffering(ctx, s, s.repos.Guides, guideMeta, o, actorID)
}

func (s *Service) ArchiveGuide(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.Guides, guideMeta, orgID, id, actorID)
}

func (s *Service) ListGuides(ctx context.Context, orgID string, params listing.Params) ([]*Guide, int, error) {
	return s.repos.Guides.List(ctx, orgID, params)
}

func (s *Service) CreateExtraExpense(ctx context.Context, o *ExtraExpense, actorID string) (*ExtraExpense, error) {
	return createOffering(ctx, s, s.repos.ExtraExpenses, extraExpenseMeta, o, actorID)
}

func (s *Service) GetExtraExpense(ctx context.Context, orgID, id string) (*ExtraExpense, error) {
	return s.repos.ExtraExpenses.GetByID(ctx, orgID, id)
}

func (s *Service) UpdateExtraExpense(ctx context.Context, o *ExtraExpense, actorID string) (*ExtraExpense, error) {
	return updateOffering(ctx, s, s.repos.ExtraExpenses, extraExpenseMeta, o, actorID)
}

func (s *Service) ArchiveExtraExpense(ctx context.Context, orgID, id, actorID string) error {
	return archiveOffering(ctx, s, s.repos.ExtraExpenses, extraExpenseMeta, orgID, id, actorID)
}

func (s *Service) ListExtraExpenses(ctx context.Context, orgID string, params listing.Params) ([]*ExtraExpense, int, error) {
	return s.repos.ExtraExpenses.List(ctx, orgID, params)
}
