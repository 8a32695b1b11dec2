package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/models"
)

type notificationLister interface {
	ListByParent(ctx context.Context, parentID string, limit int) ([]models.Notification, error)
}

// DashboardService composes the parent landing view. Each collection is
// fetched independently; a failed read degrades that collection to empty
// with a logged warning so the screen still renders.
type DashboardService struct {
	roles         *RoleService
	students      studentLister
	fees          feeReader
	notifications notificationLister
	cache         *CacheService
	logger        *zap.Logger
	listLimit     int
	cacheTTL      time.Duration
	now           func() time.Time
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Roles         *RoleService
	Students      studentLister
	Fees          feeReader
	Notifications notificationLister
	Cache         *CacheService
	Logger        *zap.Logger
	ListLimit     int
	CacheTTL      time.Duration
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.ListLimit <= 0 {
		params.ListLimit = 10
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = 2 * time.Minute
	}
	return &DashboardService{
		roles:         params.Roles,
		students:      params.Students,
		fees:          params.Fees,
		notifications: params.Notifications,
		cache:         params.Cache,
		logger:        params.Logger,
		listLimit:     params.ListLimit,
		cacheTTL:      params.CacheTTL,
		now:           time.Now,
	}
}

func dashboardCacheKey(parentID string) string {
	return fmt.Sprintf("dashboard:parent:%s", parentID)
}

// Parent returns the aggregate parent dashboard and whether it came from
// cache.
func (s *DashboardService) Parent(ctx context.Context, identity *Identity) (*dto.ParentDashboardResponse, bool, error) {
	key := dashboardCacheKey(identity.ID)
	if s.cache.Enabled() {
		var cached dto.ParentDashboardResponse
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	// Profile resolution falls back to a synthesized parent profile on
	// lookup failure rather than failing the screen.
	session := s.roles.Resolve(ctx, identity)

	students, err := s.students.ListByParent(ctx, identity.ID)
	if err != nil {
		s.logger.Warn("dashboard students fetch failed", zap.String("parent_id", identity.ID), zap.Error(err))
		students = nil
	}

	// The fee fetch needs the student id list, so it only runs once the
	// students fetch has settled.
	var fees []models.StudentFeeDetail
	if len(students) > 0 {
		ids := make([]string, len(students))
		for i, student := range students {
			ids[i] = student.ID
		}
		fees, err = s.fees.ListByStudentIDs(ctx, ids)
		if err != nil {
			s.logger.Warn("dashboard fees fetch failed", zap.String("parent_id", identity.ID), zap.Error(err))
			fees = nil
		}
	}

	notifications, err := s.notifications.ListByParent(ctx, identity.ID, s.listLimit)
	if err != nil {
		s.logger.Warn("dashboard notifications fetch failed", zap.String("parent_id", identity.ID), zap.Error(err))
		notifications = nil
	}

	asOf := s.now()
	classified := make([]dto.ClassifiedFee, len(fees))
	for i, fee := range fees {
		classified[i] = dto.ClassifiedFee{
			StudentFeeDetail: fee,
			Classification:   ClassifyFee(fee.StudentFee, asOf),
		}
	}

	resp := &dto.ParentDashboardResponse{
		Profile:       session.Profile,
		Students:      emptyIfNil(students),
		Fees:          classified,
		FeeSummary:    AggregateFees(fees, asOf),
		Notifications: emptyIfNilNotifications(notifications),
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, resp, s.cacheTTL)
	}
	return resp, false, nil
}

// InvalidateParent drops the cached dashboard for a parent. Called after
// student and payment writes.
func (s *DashboardService) InvalidateParent(ctx context.Context, parentID string) {
	_ = s.cache.Delete(ctx, dashboardCacheKey(parentID))
}

func emptyIfNil(students []models.Student) []models.Student {
	if students == nil {
		return []models.Student{}
	}
	return students
}

func emptyIfNilNotifications(notifications []models.Notification) []models.Notification {
	if notifications == nil {
		return []models.Notification{}
	}
	return notifications
}
