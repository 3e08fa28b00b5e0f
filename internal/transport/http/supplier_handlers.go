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

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourdesk/tourdesk/internal/listing"
	"github.com/tourdesk/tourdesk/internal/problem"
	"github.com/tourdesk/tourdesk/internal/rbac"
	"github.com/tourdesk/tourdesk/internal/supplier"
)

var providerListOptions = listing.Options{
	DefaultSort: "name",
	SortFields: map[string]string{
		"name":       "name",
		"country":    "country",
		"city":       "city",
		"created_at": "created_at",
	},
	Filters: map[string]string{
		"country": "country",
		"city":    "city",
	},
}

func (h *Handler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var p supplier.Provider
	if err := decodeJSON(r, &p); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	p.OrganizationID = GetOrganizationID(r.Context())

	created, err := h.suppliers.CreateProvider(r.Context(), &p, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	p, err := h.suppliers.GetProvider(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondProblem(w, r, errProblem(err, supplier.ErrProviderNotFound))
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	var p supplier.Provider
	if err := decodeJSON(r, &p); err != nil {
		respondProblem(w, r, problem.Validation("invalid request body"))
		return
	}
	p.ID = chi.URLParam(r, "id")
	p.OrganizationID = GetOrganizationID(r.Context())

	updated, err := h.suppliers.UpdateProvider(r.Context(), &p, GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, supplier.ErrProviderNotFound))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) ArchiveProvider(w http.ResponseWriter, r *http.Request) {
	err := h.suppliers.ArchiveProvider(r.Context(), GetOrganizationID(r.Context()), chi.URLParam(r, "id"), GetUserID(r.Context()))
	if err != nil {
		respondProblem(w, r, errProblem(err, supplier.ErrProviderNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	params, err := listing.Parse(r.URL.Query(), providerListOptions)
	if err != nil {
		respondProblem(w, r, problem.Validation(err.Error()))
		return
	}

	providers, total, err := h.suppliers.ListProviders(r.Context(), GetOrganizationID(r.Context()), params)
	if err != nil {
		respondProblem(w, r, errProblem(err))
		return
	}
	respondJSON(w, http.StatusOK, listing.NewEnvelope(providers, params, total))
}

// offeringEndpoints binds one offering type's service methods to the
// shared route shape. The offerings differ only in payload, so the
// handler bodies are generic and each type contributes closures.
type offeringEndpoints[T any] struct {
	path    string
	options listing.Options
	scope   func(o *T, orgID, id string)
	create  func(r *http.Request, o *T) (*T, error)
	get     func(r *http.Request, id string) (*T, error)
	update  func(r *http.Request, o *T) (*T, error)
	archive func(r *http.Request, id string) error
	list    func(r *http.Request, params listing.Params) ([]*T, int, error)
}

func mountOffering[T any](r chi.Router, h *Handler, e offeringEndpoints[T]) {
	r.Route("/"+e.path, func(r chi.Router) {
		r.Use(h.Authorize(rbac.ResourceProviders))

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var o T
			if err := decodeJSON(r, &o); err != nil {
				respondProblem(w, r, problem.Validation("invalid request body"))
				return
			}
			e.scope(&o, GetOrganizationID(r.Context()), "")

			created, err := e.create(r, &o)
			if err != nil {
				respondProblem(w, r, errProblem(err))
				return
			}
			respondJSON(w, http.StatusCreated, created)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			o, err := e.get(r, chi.URLParam(r, "id"))
			if err != nil {
				respondProblem(w, r, errProblem(err, supplier.ErrOfferingNotFound))
				return
			}
			respondJSON(w, http.StatusOK, o)
		})

		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			var o T
			if err := decodeJSON(r, &o); err != nil {
				respondProblem(w, r, problem.Validation("invalid request body"))
				return
			}
			e.scope(&o, GetOrganizationID(r.Context()), chi.URLParam(r, "id"))

			updated, err := e.update(r, &o)
			if err != nil {
				respondProblem(w, r, errProblem(err, supplier.ErrOfferingNotFound))
				return
			}
			respondJSON(w, http.StatusOK, updated)
		})

		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := e.archive(r, chi.URLParam(r, "id")); err != nil {
				respondProblem(w, r, errProblem(err, supplier.ErrOfferingNotFound))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			params, err := listing.Parse(r.URL.Query(), e.options)
			if err != nil {
				respondProblem(w, r, problem.Validation(err.Error()))
				return
			}
			items, total, err := e.list(r, params)
			if err != nil {
				respondProblem(w, r, errProblem(err))
				return
			}
			respondJSON(w, http.StatusOK, listing.NewEnvelope(items, params, total))
		})
	})
}

func offeringListOptions(extraSort, extraFilter map[string]string) listing.Options {
	sort := map[string]string{
		"name":       "name",
		"rate":       "rate_minor",
		"created_at": "created_at",
	}
	for k, v := range extraSort {
		sort[k] = v
	}
	filters := map[string]string{
		"provider_id": "provider_id",
		"currency":    "currency",
	}
	for k, v := range extraFilter {
		filters[k] = v
	}
	return listing.Options{DefaultSort: "name", SortFields: sort, Filters: filters}
}

// mountOfferings wires the offering route groups.
func (h *Handler) mountOfferings(r chi.Router) {
	org := func(r *http.Request) string { return GetOrganizationID(r.Context()) }
	actor := func(r *http.Request) string { return GetUserID(r.Context()) }

	mountOffering(r, h, offeringEndpoints[supplier.Hotel]{
		path:    "hotels",
		options: offeringListOptions(map[string]string{"stars": "stars", "city": "city"}, map[string]string{"city": "city", "stars": "stars"}),
		scope: func(o *supplier.Hotel, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.Hotel) (*supplier.Hotel, error) {
			return h.suppliers.CreateHotel(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.Hotel, error) {
			return h.suppliers.GetHotel(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.Hotel) (*supplier.Hotel, error) {
			return h.suppliers.UpdateHotel(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveHotel(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.Hotel, int, error) {
			return h.suppliers.ListHotels(r.Context(), org(r), params)
		},
	})

	mountOffering(r, h, offeringEndpoints[supplier.Vehicle]{
		path:    "vehicles",
		options: offeringListOptions(map[string]string{"capacity": "capacity"}, map[string]string{"vehicle_type": "vehicle_type"}),
		scope: func(o *supplier.Vehicle, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.Vehicle) (*supplier.Vehicle, error) {
			return h.suppliers.CreateVehicle(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.Vehicle, error) {
			return h.suppliers.GetVehicle(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.Vehicle) (*supplier.Vehicle, error) {
			return h.suppliers.UpdateVehicle(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveVehicle(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.Vehicle, int, error) {
			return h.suppliers.ListVehicles(r.Context(), org(r), params)
		},
	})

	mountOffering(r, h, offeringEndpoints[supplier.Restaurant]{
		path:    "restaurants",
		options: offeringListOptions(map[string]string{"city": "city"}, map[string]string{"city": "city", "cuisine": "cuisine"}),
		scope: func(o *supplier.Restaurant, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.Restaurant) (*supplier.Restaurant, error) {
			return h.suppliers.CreateRestaurant(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.Restaurant, error) {
			return h.suppliers.GetRestaurant(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.Restaurant) (*supplier.Restaurant, error) {
			return h.suppliers.UpdateRestaurant(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveRestaurant(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.Restaurant, int, error) {
			return h.suppliers.ListRestaurants(r.Context(), org(r), params)
		},
	})

	entranceFeeOptions := offeringListOptions(map[string]string{"site_name": "site_name", "city": "city"}, map[string]string{"city": "city"})
	entranceFeeOptions.DefaultSort = "site_name"
	delete(entranceFeeOptions.SortFields, "name")
	mountOffering(r, h, offeringEndpoints[supplier.EntranceFee]{
		path:    "entrance-fees",
		options: entranceFeeOptions,
		scope: func(o *supplier.EntranceFee, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.EntranceFee) (*supplier.EntranceFee, error) {
			return h.suppliers.CreateEntranceFee(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.EntranceFee, error) {
			return h.suppliers.GetEntranceFee(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.EntranceFee) (*supplier.EntranceFee, error) {
			return h.suppliers.UpdateEntranceFee(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveEntranceFee(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.EntranceFee, int, error) {
			return h.suppliers.ListEntranceFees(r.Context(), org(r), params)
		},
	})

	mountOffering(r, h, offeringEndpoints[supplier.DailyTour]{
		path:    "daily-tours",
		options: offeringListOptions(map[string]string{"city": "city", "duration": "duration_hours"}, map[string]string{"city": "city"}),
		scope: func(o *supplier.DailyTour, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.DailyTour) (*supplier.DailyTour, error) {
			return h.suppliers.CreateDailyTour(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.DailyTour, error) {
			return h.suppliers.GetDailyTour(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.DailyTour) (*supplier.DailyTour, error) {
			return h.suppliers.UpdateDailyTour(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveDailyTour(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.DailyTour, int, error) {
			return h.suppliers.ListDailyTours(r.Context(), org(r), params)
		},
	})

	mountOffering(r, h, offeringEndpoints[supplier.Transfer]{
		path:    "transfers",
		options: offeringListOptions(nil, map[string]string{"from_location": "from_location", "to_location": "to_location", "vehicle_type": "vehicle_type"}),
		scope: func(o *supplier.Transfer, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.Transfer) (*supplier.Transfer, error) {
			return h.suppliers.CreateTransfer(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.Transfer, error) {
			return h.suppliers.GetTransfer(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.Transfer) (*supplier.Transfer, error) {
			return h.suppliers.UpdateTransfer(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveTransfer(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.Transfer, int, error) {
			return h.suppliers.ListTransfers(r.Context(), org(r), params)
		},
	})

	guideOptions := offeringListOptions(map[string]string{"full_name": "full_name", "city": "city"}, map[string]string{"city": "city", "languages": "languages"})
	guideOptions.DefaultSort = "full_name"
	delete(guideOptions.SortFields, "name")
	mountOffering(r, h, offeringEndpoints[supplier.Guide]{
		path:    "guides",
		options: guideOptions,
		scope: func(o *supplier.Guide, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.Guide) (*supplier.Guide, error) {
			return h.suppliers.CreateGuide(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.Guide, error) {
			return h.suppliers.GetGuide(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.Guide) (*supplier.Guide, error) {
			return h.suppliers.UpdateGuide(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveGuide(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.Guide, int, error) {
			return h.suppliers.ListGuides(r.Context(), org(r), params)
		},
	})

	extraExpenseOptions := offeringListOptions(map[string]string{"description": "description"}, map[string]string{"category": "category"})
	extraExpenseOptions.DefaultSort = "-created_at"
	delete(extraExpenseOptions.SortFields, "name")
	mountOffering(r, h, offeringEndpoints[supplier.ExtraExpense]{
		path:    "extra-expenses",
		options: extraExpenseOptions,
		scope: func(o *supplier.ExtraExpense, orgID, id string) {
			o.OrganizationID, o.ID = orgID, id
		},
		create: func(r *http.Request, o *supplier.ExtraExpense) (*supplier.ExtraExpense, error) {
			return h.suppliers.CreateExtraExpense(r.Context(), o, actor(r))
		},
		get: func(r *http.Request, id string) (*supplier.ExtraExpense, error) {
			return h.suppliers.GetExtraExpense(r.Context(), org(r), id)
		},
		update: func(r *http.Request, o *supplier.ExtraExpense) (*supplier.ExtraExpense, error) {
			return h.suppliers.UpdateExtraExpense(r.Context(), o, actor(r))
		},
		archive: func(r *http.Request, id string) error {
			return h.suppliers.ArchiveExtraExpense(r.Context(), org(r), id, actor(r))
		},
		list: func(r *http.Request, params listing.Params) ([]*supplier.ExtraExpense, int, error) {
			return h.suppliers.ListExtraExpenses(r.Context(), org(r), params)
		},
	})
}
