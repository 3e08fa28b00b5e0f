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

// Package directory holds the customer-facing address book: clients
// (travelers) and agents (referral agencies that send them).
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/tourdesk/tourdesk/internal/listing"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrDuplicateEmail = errors.New("a record with this email already exists")
)

// Client is a traveler or corporate customer of the tour operator.
type Client struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	AgentID        *string    `json:"agent_id,omitempty"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Country        string     `json:"country,omitempty"`
	Nationality    string     `json:"nationality,omitempty"`
	PassportNumber string     `json:"passport_number,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Agent is a referral agency that brings clients to the operator.
// CommissionBps is the agreed commission in basis points of booking
// value (250 = 2.5%).
type Agent struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Country        string     `json:"country,omitempty"`
	CommissionBps  int        `json:"commission_bps"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// ClientRepository defines the interface for client storage
type ClientRepository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, orgID, id string) (*Client, error)
	Update(ctx context.Context, c *Client) error
	Archive(ctx context.Context, orgID, id string, at time.Time) error
	List(ctx context.Context, orgID string, params listing.Params) ([]*Client, int, error)
}

// AgentRepository defines the interface for agent storage
type AgentRepository interface {
	Create(ctx context.Context, a *Agent) error
	GetByID(ctx context.Context, orgID, id string) (*Agent, error)
	Update(ctx context.Context, a *Agent) error
	Archive(ctx context.Context, orgID, id string, at time.Time) error
	List(ctx context.Context, orgID string, params listing.Params) ([]*Agent, int, error)
}
