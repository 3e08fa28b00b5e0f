package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tourdesk/tourdesk/internal/audit"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, org *Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Organization), args.Error(1)
}

func (m *mockRepo) GetByName(ctx context.Context, name string) (*Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Organization), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, org *Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *mockRepo) Archive(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

// TestPurpose: Validates that organization creation assigns a UUIDv7 ID,
// active status and the default base currency.
// Scope: Unit Test
func TestTenant_Service_CreateOrganization(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	ctx := context.Background()
	repo.On("GetByName", ctx, "Aegean Tours").Return(nil, ErrOrganizationNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(o *Organization) bool {
		uid, err := uuid.Parse(o.ID)
		if err != nil || uid.Version() != 7 {
			return false
		}
		return o.Status == StatusActive && o.BaseCurrency == "EUR"
	})).Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeOrgCreated
	})).Return()

	org, err := service.CreateOrganization(ctx, &Organization{Name: "Aegean Tours"}, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "Aegean Tours", org.Name)
	assert.False(t, org.CreatedAt.IsZero())
	repo.AssertExpectations(t)
	auditLogger.AssertExpectations(t)
}

func TestTenant_Service_CreateOrganization_Validation(t *testing.T) {
	service := NewService(new(mockRepo), new(mockAudit))
	ctx := context.Background()

	_, err := service.CreateOrganization(ctx, &Organization{}, "user-1")
	assert.Error(t, err, "name is required")

	_, err = service.CreateOrganization(ctx, &Organization{Name: "X", BaseCurrency: "EURO"}, "user-1")
	assert.Error(t, err, "unknown currency is rejected")
}

// TestPurpose: Validates duplicate-name rejection at creation.
// Scope: Unit Test
// Expected: A second organization with the same name fails with
// ErrOrganizationExists.
func TestTenant_Service_CreateOrganization_Duplicate(t *testing.T) {
	repo := new(mockRepo)
	service := NewService(repo, new(mockAudit))
	ctx := context.Background()

	repo.On("GetByName", ctx, "Aegean Tours").Return(&Organization{ID: "existing"}, nil)

	_, err := service.CreateOrganization(ctx, &Organization{Name: "Aegean Tours"}, "user-1")
	assert.ErrorIs(t, err, ErrOrganizationExists)
}

func TestTenant_Service_ArchiveOrganization(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)
	ctx := context.Background()

	repo.On("GetByID", ctx, "org-1").Return(&Organization{ID: "org-1"}, nil)
	repo.On("Archive", ctx, "org-1", mock.Anything).Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeOrgArchived && e.OrganizationID == "org-1"
	})).Return()

	err := service.ArchiveOrganization(ctx, "org-1", "user-1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)

	repo.On("GetByID", ctx, "missing").Return(nil, ErrOrganizationNotFound)
	err = service.ArchiveOrganization(ctx, "missing", "user-1")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}
