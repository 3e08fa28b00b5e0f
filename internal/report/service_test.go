package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/money"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CountActiveClients(ctx context.Context, orgID string) (int, error) {
	args := m.Called(ctx, orgID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) CountActiveProviders(ctx context.Context, orgID string) (int, error) {
	args := m.Called(ctx, orgID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) CountBookingsByStatus(ctx context.Context, orgID string) (map[string]int, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockRepo) CountToursBetween(ctx context.Context, orgID string, from, to time.Time) (int, error) {
	args := m.Called(ctx, orgID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) CountOpenInvoices(ctx context.Context, orgID string) (int, error) {
	args := m.Called(ctx, orgID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) UpcomingTours(ctx context.Context, orgID string, from time.Time, limit int) ([]*UpcomingTour, error) {
	args := m.Called(ctx, orgID, from, limit)
	return args.Get(0).([]*UpcomingTour), args.Error(1)
}

func (m *mockRepo) OutstandingByCurrency(ctx context.Context, orgID, direction string) ([]money.Amount, error) {
	args := m.Called(ctx, orgID, direction)
	return args.Get(0).([]money.Amount), args.Error(1)
}

func (m *mockRepo) SettledBetweenByCurrency(ctx context.Context, orgID, direction string, from, to time.Time) ([]money.Amount, error) {
	args := m.Called(ctx, orgID, direction, from, to)
	return args.Get(0).([]money.Amount), args.Error(1)
}

func (m *mockRepo) MonthlySales(ctx context.Context, orgID string, from, to time.Time) ([]*MonthlySales, error) {
	args := m.Called(ctx, orgID, from, to)
	return args.Get(0).([]*MonthlySales), args.Error(1)
}

type mockTenants struct {
	mock.Mock
}

func (m *mockTenants) BaseCurrency(ctx context.Context, orgID string) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

type mockConverter struct {
	mock.Mock
}

func (m *mockConverter) ConvertAmount(ctx context.Context, orgID string, amount money.Amount, target string, asOf time.Time) (money.Amount, error) {
	args := m.Called(ctx, orgID, amount, target, asOf)
	return args.Get(0).(money.Amount), args.Error(1)
}

func eur(minor int64) money.Amount {
	a, _ := money.New("EUR", minor)
	return a
}

func usd(minor int64) money.Amount {
	a, _ := money.New("USD", minor)
	return a
}

// TestPurpose: Exercises the concurrent dashboard aggregate fan-out and
// verifies mixed-currency revenue is folded into the base currency.
// Scope: Unit Test
// Expected: Revenue is the EUR sum plus the converted USD sum.
func TestReport_DashboardStats(t *testing.T) {
	repo := new(mockRepo)
	tenants := new(mockTenants)
	converter := new(mockConverter)
	svc := NewService(repo, tenants, converter)
	ctx := context.Background()

	tenants.On("BaseCurrency", ctx, "org-1").Return("EUR", nil)
	repo.On("CountActiveClients", mock.Anything, "org-1").Return(12, nil)
	repo.On("CountActiveProviders", mock.Anything, "org-1").Return(5, nil)
	repo.On("CountBookingsByStatus", mock.Anything, "org-1").Return(map[string]int{"pending": 3, "confirmed": 7}, nil)
	repo.On("CountToursBetween", mock.Anything, "org-1", mock.Anything, mock.Anything).Return(4, nil)
	repo.On("CountOpenInvoices", mock.Anything, "org-1").Return(6, nil)
	repo.On("SettledBetweenByCurrency", mock.Anything, "org-1", billing.DirectionReceivable, mock.Anything, mock.Anything).
		Return([]money.Amount{eur(250000), usd(10000)}, nil)
	converter.On("ConvertAmount", ctx, "org-1", eur(250000), "EUR", mock.Anything).Return(eur(250000), nil)
	converter.On("ConvertAmount", ctx, "org-1", usd(10000), "EUR", mock.Anything).Return(eur(9200), nil)

	stats, err := svc.DashboardStats(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.ActiveClients)
	assert.Equal(t, 5, stats.ActiveProviders)
	assert.Equal(t, 3, stats.PendingBookings)
	assert.Equal(t, 7, stats.ConfirmedBookings)
	assert.Equal(t, 4, stats.ToursNext7Days)
	assert.Equal(t, 6, stats.OpenInvoices)
	assert.Equal(t, int64(259200), stats.RevenueMinor)
	assert.Equal(t, "EUR", stats.Currency)
}

func TestReport_FinanceSummary(t *testing.T) {
	repo := new(mockRepo)
	tenants := new(mockTenants)
	converter := new(mockConverter)
	svc := NewService(repo, tenants, converter)
	ctx := context.Background()

	tenants.On("BaseCurrency", ctx, "org-1").Return("EUR", nil)
	repo.On("OutstandingByCurrency", mock.Anything, "org-1", billing.DirectionReceivable).
		Return([]money.Amount{eur(100000)}, nil)
	repo.On("OutstandingByCurrency", mock.Anything, "org-1", billing.DirectionPayable).
		Return([]money.Amount{eur(40000)}, nil)
	repo.On("SettledBetweenByCurrency", mock.Anything, "org-1", billing.DirectionReceivable, mock.Anything, mock.Anything).
		Return([]money.Amount{eur(30000)}, nil)
	repo.On("SettledBetweenByCurrency", mock.Anything, "org-1", billing.DirectionPayable, mock.Anything, mock.Anything).
		Return([]money.Amount{eur(12000)}, nil)
	for _, a := range []money.Amount{eur(100000), eur(40000), eur(30000), eur(12000)} {
		converter.On("ConvertAmount", ctx, "org-1", a, "EUR", mock.Anything).Return(a, nil)
	}

	summary, err := svc.FinanceSummary(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), summary.ReceivableOutstanding)
	assert.Equal(t, int64(40000), summary.PayableOutstanding)
	assert.Equal(t, int64(30000), summary.ReceivedThisMonth)
	assert.Equal(t, int64(12000), summary.PaidThisMonth)
	assert.Equal(t, int64(60000), summary.NetPosition)
}

func TestReport_SalesOverview(t *testing.T) {
	repo := new(mockRepo)
	tenants := new(mockTenants)
	converter := new(mockConverter)
	svc := NewService(repo, tenants, converter)
	ctx := context.Background()

	tenants.On("BaseCurrency", ctx, "org-1").Return("EUR", nil)
	repo.On("MonthlySales", ctx, "org-1", mock.Anything, mock.Anything).Return([]*MonthlySales{
		{Month: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Bookings: 9, Revenue: []money.Amount{eur(420000)}},
		{Month: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Bookings: 11, Revenue: []money.Amount{eur(510000)}},
	}, nil)
	converter.On("ConvertAmount", ctx, "org-1", eur(420000), "EUR", mock.Anything).Return(eur(420000), nil)
	converter.On("ConvertAmount", ctx, "org-1", eur(510000), "EUR", mock.Anything).Return(eur(510000), nil)

	overview, err := svc.SalesOverview(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, overview.Months, 2)
	assert.Equal(t, "2026-07", overview.Months[0].Month)
	assert.Equal(t, 9, overview.Months[0].BookingCount)
	assert.Equal(t, int64(420000), overview.Months[0].RevenueMinor)
	assert.Equal(t, "2026-08", overview.Months[1].Month)
}

func TestReport_DashboardStats_PropagatesErrors(t *testing.T) {
	repo := new(mockRepo)
	tenants := new(mockTenants)
	converter := new(mockConverter)
	svc := NewService(repo, tenants, converter)
	ctx := context.Background()

	tenants.On("BaseCurrency", ctx, "org-1").Return("EUR", nil)
	repo.On("CountActiveClients", mock.Anything, "org-1").Return(0, assert.AnError)
	repo.On("CountActiveProviders", mock.Anything, "org-1").Return(0, nil)
	repo.On("CountBookingsByStatus", mock.Anything, "org-1").Return(map[string]int{}, nil)
	repo.On("CountToursBetween", mock.Anything, "org-1", mock.Anything, mock.Anything).Return(0, nil)
	repo.On("CountOpenInvoices", mock.Anything, "org-1").Return(0, nil)
	repo.On("SettledBetweenByCurrency", mock.Anything, "org-1", mock.Anything, mock.Anything, mock.Anything).
		Return([]money.Amount{}, nil)

	_, err := svc.DashboardStats(ctx, "org-1")
	assert.ErrorIs(t, err, assert.AnError)
}
