package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/directory"
	"github.com/tourdesk/tourdesk/internal/listing"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, b *Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, orgID, id string) (*Booking, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, b *Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, orgID, id, status string, at time.Time) error {
	args := m.Called(ctx, orgID, id, status, at)
	return args.Error(0)
}

func (m *mockRepo) Archive(ctx context.Context, orgID, id string, at time.Time) error {
	args := m.Called(ctx, orgID, id, at)
	return args.Error(0)
}

func (m *mockRepo) List(ctx context.Context, orgID string, params listing.Params) ([]*Booking, int, error) {
	args := m.Called(ctx, orgID, params)
	return args.Get(0).([]*Booking), args.Int(1), args.Error(2)
}

func (m *mockRepo) CountByReference(ctx context.Context, orgID, reference string) (int, error) {
	args := m.Called(ctx, orgID, reference)
	return args.Int(0), args.Error(1)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) ClientExists(ctx context.Context, orgID, clientID string) error {
	args := m.Called(ctx, orgID, clientID)
	return args.Error(0)
}

func (m *mockDirectory) AgentExists(ctx context.Context, orgID, agentID string) error {
	args := m.Called(ctx, orgID, agentID)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

func validBooking() *Booking {
	return &Booking{
		OrganizationID: "org-1",
		ClientID:       "client-1",
		Title:          "Santorini Honeymoon",
		Pax:            2,
		StartDate:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Currency:       "EUR",
		Items: []Item{
			{ItemType: ItemHotel, OfferingID: "hotel-1", Description: "5 nights sea view", Quantity: 5, UnitMinor: 18000},
			{ItemType: ItemTransfer, OfferingID: "tr-1", Description: "Airport transfer", Quantity: 2, UnitMinor: 4500},
		},
	}
}

func newService() (*Service, *mockRepo, *mockDirectory, *mockAudit) {
	repo := new(mockRepo)
	dir := new(mockDirectory)
	logger := new(mockAudit)
	return NewService(repo, dir, logger), repo, dir, logger
}

// TestPurpose: Verifies booking creation computes the total from items
// server side and generates a reference when none is supplied.
// Scope: Unit Test
// Expected: Total is 5*18000 + 2*4500 = 99000 minor units.
func TestBooking_Create(t *testing.T) {
	svc, repo, dir, logger := newService()
	ctx := context.Background()

	dir.On("ClientExists", ctx, "org-1", "client-1").Return(nil)
	repo.On("Create", ctx, mock.MatchedBy(func(b *Booking) bool {
		return b.ID != "" && b.Status == StatusPending &&
			b.TotalMinor == 99000 && b.Reference != "" &&
			b.Items[0].ID != ""
	})).Return(nil)
	logger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeRecordCreated && e.Resource == "booking"
	})).Return()

	input := validBooking()
	input.TotalMinor = 1 // client-supplied totals are ignored
	b, err := svc.CreateBooking(ctx, input, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(99000), b.TotalMinor)
	assert.Contains(t, b.Reference, "BK-")
	repo.AssertExpectations(t)
}

func TestBooking_Create_Validation(t *testing.T) {
	svc, _, dir, _ := newService()
	ctx := context.Background()
	dir.On("ClientExists", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	cases := []struct {
		name   string
		mutate func(b *Booking)
	}{
		{"missing client", func(b *Booking) { b.ClientID = "" }},
		{"missing title", func(b *Booking) { b.Title = "" }},
		{"zero pax", func(b *Booking) { b.Pax = 0 }},
		{"reversed dates", func(b *Booking) { b.StartDate, b.EndDate = b.EndDate, b.StartDate }},
		{"unknown currency", func(b *Booking) { b.Currency = "XXX" }},
		{"zero quantity item", func(b *Booking) { b.Items[0].Quantity = 0 }},
		{"negative price item", func(b *Booking) { b.Items[0].UnitMinor = -1 }},
		{"unknown item type", func(b *Booking) { b.Items[0].ItemType = "flight" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBooking()
			tc.mutate(b)
			_, err := svc.CreateBooking(ctx, b, "user-1")
			assert.Error(t, err)
		})
	}
}

func TestBooking_Create_UnknownClient(t *testing.T) {
	svc, _, dir, _ := newService()
	ctx := context.Background()

	dir.On("ClientExists", ctx, "org-1", "client-1").Return(directory.ErrClientNotFound)
	_, err := svc.CreateBooking(ctx, validBooking(), "user-1")
	assert.ErrorIs(t, err, directory.ErrClientNotFound)
}

func TestBooking_Create_DuplicateReference(t *testing.T) {
	svc, repo, dir, _ := newService()
	ctx := context.Background()

	dir.On("ClientExists", ctx, "org-1", "client-1").Return(nil)
	repo.On("CountByReference", ctx, "org-1", "BK-CUSTOM-1").Return(1, nil)

	b := validBooking()
	b.Reference = "BK-CUSTOM-1"
	_, err := svc.CreateBooking(ctx, b, "user-1")
	assert.Error(t, err)
}

func TestBooking_Transition(t *testing.T) {
	svc, repo, _, logger := newService()
	ctx := context.Background()
	logger.On("Log", ctx, mock.Anything).Return()

	repo.On("GetByID", ctx, "org-1", "bk-1").Return(&Booking{ID: "bk-1", Status: StatusPending}, nil)
	repo.On("UpdateStatus", ctx, "org-1", "bk-1", StatusConfirmed, mock.Anything).Return(nil)

	b, err := svc.TransitionBooking(ctx, "org-1", "bk-1", StatusConfirmed, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)

	// completed is terminal
	repo.On("GetByID", ctx, "org-1", "bk-2").Return(&Booking{ID: "bk-2", Status: StatusCompleted}, nil)
	_, err = svc.TransitionBooking(ctx, "org-1", "bk-2", StatusCancelled, "user-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// pending cannot jump straight to completed
	repo.On("GetByID", ctx, "org-1", "bk-3").Return(&Booking{ID: "bk-3", Status: StatusPending}, nil)
	_, err = svc.TransitionBooking(ctx, "org-1", "bk-3", StatusCompleted, "user-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBooking_Update_LockedAfterCompletion(t *testing.T) {
	svc, repo, _, _ := newService()
	ctx := context.Background()

	repo.On("GetByID", ctx, "org-1", "bk-1").Return(&Booking{ID: "bk-1", Status: StatusCompleted}, nil)

	b := validBooking()
	b.ID = "bk-1"
	_, err := svc.UpdateBooking(ctx, b, "user-1")
	assert.ErrorIs(t, err, ErrBookingNotEditable)
}
