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

package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/id"
	"github.com/tourdesk/tourdesk/internal/listing"
)

// Service provides client and agent management
type Service struct {
	clients     ClientRepository
	agents      AgentRepository
	auditLogger audit.Logger
}

// NewService creates a new directory service
func NewService(clients ClientRepository, agents AgentRepository, auditLogger audit.Logger) *Service {
	return &Service{
		clients:     clients,
		agents:      agents,
		auditLogger: auditLogger,
	}
}

// CreateClient validates and stores a new client. A referring agent, if
// given, must exist in the same organization.
func (s *Service) CreateClient(ctx context.Context, c *Client, actorID string) (*Client, error) {
	if c.FullName == "" {
		return nil, fmt.Errorf("client full_name is required")
	}
	if c.AgentID != nil {
		if _, err := s.agents.GetByID(ctx, c.OrganizationID, *c.AgentID); err != nil {
			return nil, fmt.Errorf("referring agent: %w", err)
		}
	}

	now := time.Now()
	c.ID = id.NewUUIDv7()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeRecordCreated,
		OrganizationID: c.OrganizationID,
		ActorID:        actorID,
		Resource:       "client",
		Metadata:       map[string]any{audit.AttrEntity: c.ID},
	})

	return c, nil
}

// GetClient retrieves a client by ID within an organization
func (s *Service) GetClient(ctx context.Context, orgID, clientID string) (*Client, error) {
	return s.clients.GetByID(ctx, orgID, clientID)
}

// UpdateClient applies changes to an existing client
func (s *Service) UpdateClient(ctx context.Context, c *Client, actorID string) (*Client, error) {
	current, err := s.clients.GetByID(ctx, c.OrganizationID, c.ID)
	if err != nil {
		return nil, err
	}
	if c.FullName == "" {
		return nil, fmt.Errorf("client full_name is required")
	}
	if c.AgentID != nil {
		if _, err := s.agents.GetByID(ctx, c.OrganizationID, *c.AgentID); err != nil {
			return nil, fmt.Errorf("referring agent: %w", err)
		}
	}

	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = time.Now()
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeRecordUpdated,
		OrganizationID: c.OrganizationID,
		ActorID:        actorID,
		Resource:       "client",
		Metadata:       map[string]any{audit.AttrEntity: c.ID},
	})

	return c, nil
}

// ArchiveClient soft-deletes a client
func (s *Service) ArchiveClient(ctx context.Context, orgID, clientID, actorID string) error {
	if _, err := s.clients.GetByID(ctx, orgID, clientID); err != nil {
		return err
	}
	if err := s.clients.Archive(ctx, orgID, clientID, time.Now()); err != nil {
		return fmt.Errorf("failed to archive client: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeRecordArchived,
		OrganizationID: orgID,
		ActorID:        actorID,
		Resource:       "client",
		Metadata:       map[string]any{audit.AttrEntity: clientID},
	})

	return nil
}

// ListClients lists clients with pagination and filters
func (s *Service) ListClients(ctx context.Context, orgID string, params listing.Params) ([]*Client, int, error) {
	return s.clients.List(ctx, orgID, params)
}

// CreateAgent validates and stores a new referral agent
func (s *Service) CreateAgent(ctx context.Context, a *Agent, actorID string) (*Agent, error) {
	if a.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if a.CommissionBps < 0 || a.CommissionBps > 10000 {
		return nil, fmt.Errorf("commission_bps must be between 0 and 10000")
	}

	now := time.Now()
	a.ID = id.NewUUIDv7()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := s.agents.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeRecordCreated,
		OrganizationID: a.OrganizationID,
		ActorID:        actorID,
		Resource:       "agent",
		Metadata:       map[string]any{audit.AttrEntity: a.ID},
	})

	return a, nil
}

// GetAgent retrieves an agent by ID within an organization
func (s *Service) GetAgent(ctx context.Context, orgID, agentID string) (*Agent, error) {
	return s.agents.GetByID(ctx, orgID, agentID)
}

// UpdateAgent applies changes to an existing agent
func (s *Service) UpdateAgent(ctx context.Context, a *Agent, actorID string) (*Agent, error) {
	current, err := s.agents.GetByID(ctx, a.OrganizationID, a.ID)
	if err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if a.CommissionBps < 0 || a.CommissionBps > 10000 {
		return nil, fmt.Errorf("commission_bps must be between 0 and 10000")
	}

	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = time.Now()
	if err := s.agents.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	return a, nil
}

// ArchiveAgent soft-deletes an agent
func (s *Service) ArchiveAgent(ctx context.Context, orgID, agentID, actorID string) error {
	if _, err := s.agents.GetByID(ctx, orgID, agentID); err != nil {
		return err
	}
	if err := s.agents.Archive(ctx, orgID, agentID, time.Now()); err != nil {
		return fmt.Errorf("failed to archive agent: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:           audit.TypeRecordArchived,
		OrganizationID: orgID,
		ActorID:        actorID,
		Resource:       "agent",
		Metadata:       map[string]any{audit.AttrEntity: agentID},
	})

	return nil
}

// ListAgents lists agents with pagination and filters
func (s *Service) ListAgents(ctx context.Context, orgID string, params listing.Params) ([]*Agent, int, error) {
	return s.agents.List(ctx, orgID, params)
}

// ClientExists confirms a client belongs to the organization. Other
// domains use this to validate references without loading the row.
func (s *Service) ClientExists(ctx context.Context, orgID, clientID string) error {
	_, err := s.clients.GetByID(ctx, orgID, clientID)
	return err
}

// AgentExists confirms an agent belongs to the organization.
func (s *Service) AgentExists(ctx context.Context, orgID, agentID string) error {
	_, err := s.agents.GetByID(ctx, orgID, agentID)
	return err
}
