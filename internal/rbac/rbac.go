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

// Package rbac defines the static role/resource/action matrix enforced on
// every API route. Roles are per-organization attributes of a user; there
// is no cross-tenant role.
package rbac

// Roles, ordered by decreasing privilege.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
	RoleViewer  = "viewer"
)

// Resources guarded by the matrix. Hotels, vehicles, restaurants,
// entrance fees, daily tours, transfers and extra expenses are all
// provider-owned offerings and share the suppliers resource.
const (
	ResourceOrganizations = "organizations"
	ResourceUsers         = "users"
	ResourceClients       = "clients"
	ResourceAgents        = "agents"
	ResourceProviders     = "providers"
	ResourceBookings      = "bookings"
	ResourceInvoices      = "invoices"
	ResourceFinance       = "finance"
	ResourceReports       = "reports"
	ResourceDashboard     = "dashboard"
)

// Actions.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type actionSet map[string]bool

var readOnly = actionSet{ActionRead: true}
var readWrite = actionSet{ActionRead: true, ActionCreate: true, ActionUpdate: true}
var full = actionSet{ActionRead: true, ActionCreate: true, ActionUpdate: true, ActionDelete: true}

// matrix maps role -> resource -> allowed actions. Admin is handled as a
// wildcard in Allowed.
var matrix = map[string]map[string]actionSet{
	RoleManager: {
		ResourceUsers:     readOnly,
		ResourceClients:   full,
		ResourceAgents:    full,
		ResourceProviders: full,
		ResourceBookings:  full,
		ResourceInvoices:  full,
		ResourceFinance:   readWrite,
		ResourceReports:   readOnly,
		ResourceDashboard: readOnly,
	},
	RoleAgent: {
		ResourceClients:   readWrite,
		ResourceAgents:    readOnly,
		ResourceProviders: readOnly,
		ResourceBookings:  readWrite,
		ResourceInvoices:  readOnly,
		ResourceDashboard: readOnly,
	},
	RoleViewer: {
		ResourceClients:   readOnly,
		ResourceAgents:    readOnly,
		ResourceProviders: readOnly,
		ResourceBookings:  readOnly,
		ResourceInvoices:  readOnly,
		ResourceFinance:   readOnly,
		ResourceReports:   readOnly,
		ResourceDashboard: readOnly,
	},
}

// Allowed reports whether a role may perform an action on a resource.
// Organization management is admin-only regardless of the matrix.
func Allowed(role, resource, action string) bool {
	if role == RoleAdmin {
		return true
	}
	if resource == ResourceOrganizations {
		return false
	}
	perms, ok := matrix[role]
	if !ok {
		return false
	}
	return perms[resource][action]
}

// ValidRole reports whether the role name is one the system knows.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleAgent, RoleViewer:
		return true
	}
	return false
}
