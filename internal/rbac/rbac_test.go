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

package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates the role/resource/action matrix boundaries.
// Scope: Unit Test
// Security: RBAC enforcement depends entirely on this table.
func TestRBAC_Allowed(t *testing.T) {
	// Admin is a wildcard, including organization management.
	assert.True(t, Allowed(RoleAdmin, ResourceOrganizations, ActionDelete))
	assert.True(t, Allowed(RoleAdmin, ResourceInvoices, ActionCreate))

	// Organization management is admin-only.
	assert.False(t, Allowed(RoleManager, ResourceOrganizations, ActionRead))

	// Managers run the business but cannot manage users.
	assert.True(t, Allowed(RoleManager, ResourceInvoices, ActionDelete))
	assert.True(t, Allowed(RoleManager, ResourceFinance, ActionCreate))
	assert.False(t, Allowed(RoleManager, ResourceUsers, ActionCreate))

	// Agents write bookings and clients, read the rest.
	assert.True(t, Allowed(RoleAgent, ResourceClients, ActionUpdate))
	assert.True(t, Allowed(RoleAgent, ResourceBookings, ActionCreate))
	assert.False(t, Allowed(RoleAgent, ResourceBookings, ActionDelete))
	assert.False(t, Allowed(RoleAgent, ResourceInvoices, ActionCreate))
	assert.False(t, Allowed(RoleAgent, ResourceReports, ActionRead))

	// Viewers never mutate.
	for _, res := range []string{ResourceClients, ResourceBookings, ResourceInvoices} {
		assert.True(t, Allowed(RoleViewer, res, ActionRead), res)
		assert.False(t, Allowed(RoleViewer, res, ActionCreate), res)
		assert.False(t, Allowed(RoleViewer, res, ActionDelete), res)
	}

	// Unknown roles get nothing.
	assert.False(t, Allowed("superuser", ResourceClients, ActionRead))
}

func TestRBAC_ValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleManager, RoleAgent, RoleViewer} {
		assert.True(t, ValidRole(r))
	}
	assert.False(t, ValidRole("owner"))
	assert.False(t, ValidRole(""))
}
