package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleconnect/portail-api/internal/models"
)

type fakeProfileRoster struct {
	profiles []models.Profile
	err      error
}

func (f *fakeProfileRoster) ListAll(context.Context) ([]models.Profile, error) {
	return f.profiles, f.err
}

type fakeStudentCounter struct {
	count int
	err   error
}

func (f *fakeStudentCounter) CountActive(context.Context) (int, error) {
	return f.count, f.err
}

type fakePaymentStats struct {
	stats *models.PaymentStats
	err   error
}

func (f *fakePaymentStats) Stats(context.Context) (*models.PaymentStats, error) {
	return f.stats, f.err
}

func TestAdminStats(t *testing.T) {
	roster := &fakeProfileRoster{profiles: []models.Profile{
		{ID: "u-1", Role: models.RoleAdmin},
		{ID: "u-2", Role: models.RoleTeacher},
		{ID: "u-3", Role: models.RoleTeacher},
		{ID: "u-4", Role: models.RoleParent},
	}}
	students := &fakeStudentCounter{count: 12}
	payments := &fakePaymentStats{stats: &models.PaymentStats{PendingCount: 3, TotalRevenue: 450.5}}

	svc := NewAdminService(roster, students, payments, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalStudents)
	assert.Equal(t, 2, stats.TotalTeachers)
	assert.Equal(t, 1, stats.TotalParents)
	assert.Equal(t, 3, stats.PendingPayments)
	assert.Equal(t, 450.5, stats.TotalRevenue)
}

func TestAdminStatsDegradesOnReadFailure(t *testing.T) {
	roster := &fakeProfileRoster{err: errors.New("profiles unavailable")}
	students := &fakeStudentCounter{count: 7}
	payments := &fakePaymentStats{err: errors.New("payments unavailable")}

	svc := NewAdminService(roster, students, payments, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalStudents)
	assert.Zero(t, stats.TotalTeachers)
	assert.Zero(t, stats.TotalParents)
	assert.Zero(t, stats.PendingPayments)
	assert.Zero(t, stats.TotalRevenue)
}

func TestAdminListUsers(t *testing.T) {
	roster := &fakeProfileRoster{profiles: []models.Profile{
		{ID: "u-1", Email: "admin@ecole.fr", Role: models.RoleAdmin},
		{ID: "u-2", Email: "parent@ecole.fr", Role: models.RoleParent},
	}}

	svc := NewAdminService(roster, &fakeStudentCounter{}, &fakePaymentStats{}, nil)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@ecole.fr", users[0].Email)
}

func TestAdminListUsersError(t *testing.T) {
	roster := &fakeProfileRoster{err: errors.New("profiles unavailable")}

	svc := NewAdminService(roster, &fakeStudentCounter{}, &fakePaymentStats{}, nil)

	_, err := svc.ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
}
