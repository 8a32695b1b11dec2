package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/models"
)

type profileLister interface {
	ListAll(ctx context.Context) ([]models.Profile, error)
}

type studentCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type paymentStatsReader interface {
	Stats(ctx context.Context) (*models.PaymentStats, error)
}

// AdminService serves the admin overview: the full user roster and
// school-wide aggregates. Stats reads degrade per source to zero values with
// a logged warning so the screen still renders.
type AdminService struct {
	profiles profileLister
	students studentCounter
	payments paymentStatsReader
	logger   *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(profiles profileLister, students studentCounter, payments paymentStatsReader, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		profiles: profiles,
		students: students,
		payments: payments,
		logger:   logger,
	}
}

// Stats aggregates headcounts and payment totals for the admin overview.
func (s *AdminService) Stats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	stats := &dto.AdminStatsResponse{}

	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		s.logger.Warn("admin stats profiles fetch failed", zap.Error(err))
	}
	for _, profile := range profiles {
		switch profile.Role {
		case models.RoleTeacher:
			stats.TotalTeachers++
		case models.RoleParent:
			stats.TotalParents++
		}
	}

	count, err := s.students.CountActive(ctx)
	if err != nil {
		s.logger.Warn("admin stats student count failed", zap.Error(err))
	} else {
		stats.TotalStudents = count
	}

	payments, err := s.payments.Stats(ctx)
	if err != nil {
		s.logger.Warn("admin stats payment aggregate failed", zap.Error(err))
	} else {
		stats.PendingPayments = payments.PendingCount
		stats.TotalRevenue = payments.TotalRevenue
	}

	return stats, nil
}

// ListUsers returns every profile, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return profiles, nil
}
