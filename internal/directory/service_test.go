package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/listing"
)

type mockClientRepo struct {
	mock.Mock
}

func (m *mockClientRepo) Create(ctx context.Context, c *Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockClientRepo) GetByID(ctx context.Context, orgID, id string) (*Client, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

func (m *mockClientRepo) Update(ctx context.Context, c *Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockClientRepo) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	args := m.Called(ctx, orgID, id, at)
	return args.Error(0)
}

func (m *mockClientRepo) List(ctx context.Context, orgID string, params listing.Params) ([]*Client, int, error) {
	args := m.Called(ctx, orgID, params)
	return args.Get(0).([]*Client), args.Int(1), args.Error(2)
}

type mockAgentRepo struct {
	mock.Mock
}

func (m *mockAgentRepo) Create(ctx context.Context, a *Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAgentRepo) GetByID(ctx context.Context, orgID, id string) (*Agent, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Agent), args.Error(1)
}

func (m *mockAgentRepo) Update(ctx context.Context, a *Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAgentRepo) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	args := m.Called(ctx, orgID, id, at)
	return args.Error(0)
}

func (m *mockAgentRepo) List(ctx context.Context, orgID string, params listing.Params) ([]*Agent, int, error) {
	args := m.Called(ctx, orgID, params)
	return args.Get(0).([]*Agent), args.Int(1), args.Error(2)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

func newTestService() (*Service, *mockClientRepo, *mockAgentRepo, *mockAudit) {
	clients := new(mockClientRepo)
	agents := new(mockAgentRepo)
	auditLogger := new(mockAudit)
	return NewService(clients, agents, auditLogger), clients, agents, auditLogger
}

func TestDirectory_CreateClient(t *testing.T) {
	svc, clients, _, auditLogger := newTestService()
	ctx := context.Background()

	clients.On("Create", ctx, mock.MatchedBy(func(c *Client) bool {
		return c.ID != "" && c.OrganizationID == "org-1" && !c.CreatedAt.IsZero()
	})).Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeRecordCreated && e.Resource == "client"
	})).Return()

	c, err := svc.CreateClient(ctx, &Client{
		OrganizationID: "org-1",
		FullName:       "Maria Rossi",
		Country:        "IT",
	}, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	clients.AssertExpectations(t)
}

func TestDirectory_CreateClient_RequiresName(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.CreateClient(context.Background(), &Client{OrganizationID: "org-1"}, "user-1")
	assert.Error(t, err)
}

// TestPurpose: Validates that a referring agent must exist in the same
// organization before a client may reference it.
// Scope: Unit Test
// Security: Prevents cross-tenant references by ID guessing.
func TestDirectory_CreateClient_UnknownAgentRejected(t *testing.T) {
	svc, _, agents, _ := newTestService()
	ctx := context.Background()

	agentID := "agent-other-org"
	agents.On("GetByID", ctx, "org-1", agentID).Return(nil, ErrAgentNotFound)

	_, err := svc.CreateClient(ctx, &Client{
		OrganizationID: "org-1",
		FullName:       "Maria Rossi",
		AgentID:        &agentID,
	}, "user-1")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestDirectory_ArchiveClient(t *testing.T) {
	svc, clients, _, auditLogger := newTestService()
	ctx := context.Background()

	clients.On("GetByID", ctx, "org-1", "client-1").Return(&Client{ID: "client-1"}, nil)
	clients.On("Archive", ctx, "org-1", "client-1", mock.Anything).Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeRecordArchived
	})).Return()

	assert.NoError(t, svc.ArchiveClient(ctx, "org-1", "client-1", "user-1"))

	clients.On("GetByID", ctx, "org-1", "missing").Return(nil, ErrClientNotFound)
	assert.ErrorIs(t, svc.ArchiveClient(ctx, "org-1", "missing", "user-1"), ErrClientNotFound)
}

func TestDirectory_CreateAgent_CommissionBounds(t *testing.T) {
	svc, _, agents, auditLogger := newTestService()
	ctx := context.Background()

	_, err := svc.CreateAgent(ctx, &Agent{OrganizationID: "org-1", Name: "X", CommissionBps: -1}, "user-1")
	assert.Error(t, err)
	_, err = svc.CreateAgent(ctx, &Agent{OrganizationID: "org-1", Name: "X", CommissionBps: 10001}, "user-1")
	assert.Error(t, err)

	agents.On("Create", ctx, mock.Anything).Return(nil)
	auditLogger.On("Log", ctx, mock.Anything).Return()
	a, err := svc.CreateAgent(ctx, &Agent{OrganizationID: "org-1", Name: "Sunlight Travel", CommissionBps: 250}, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
}

func TestDirectory_CreateAgent_KeepsNotes(t *testing.T) {
	svc, _, agents, auditLogger := newTestService()
	ctx := context.Background()

	agents.On("Create", ctx, mock.MatchedBy(func(a *Agent) bool {
		return a.Notes == "pays net 30"
	})).Return(nil)
	auditLogger.On("Log", ctx, mock.Anything).Return()

	a, err := svc.CreateAgent(ctx, &Agent{
		OrganizationID: "org-1",
		Name:           "Sunlight Travel",
		CommissionBps:  250,
		Notes:          "pays net 30",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "pays net 30", a.Notes)
	agents.AssertExpectations(t)
}
