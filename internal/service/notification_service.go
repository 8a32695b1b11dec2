package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecoleconnect/portail-api/internal/models"
	appErrors "github.com/ecoleconnect/portail-api/pkg/errors"
	"github.com/ecoleconnect/portail-api/pkg/jobs"
)

type notificationRepository interface {
	ListByParent(ctx context.Context, parentID string, limit int) ([]models.Notification, error)
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Create(ctx context.Context, notification *models.Notification) error
}

// notificationEnqueuer abstracts the background queue.
type notificationEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotificationService reads payment notifications for parents and dispatches
// payment-received notices asynchronously.
type NotificationService struct {
	repo      notificationRepository
	queue     notificationEnqueuer
	listLimit int
	logger    *zap.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(repo notificationRepository, queue notificationEnqueuer, listLimit int, logger *zap.Logger) *NotificationService {
	if listLimit <= 0 {
		listLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, queue: queue, listLimit: listLimit, logger: logger}
}

// List returns the parent's latest notifications.
func (s *NotificationService) List(ctx context.Context, parentID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByParent(ctx, parentID, s.listLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flips the is_read flag on one of the parent's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, parentID, id string) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.ParentID != parentID {
		return appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another parent")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// PaymentRecorded enqueues a payment-received notice for the paying parent.
// Dispatch is best-effort: a full queue is logged, not surfaced.
func (s *NotificationService) PaymentRecorded(payment models.Payment, fee models.StudentFeeDetail) {
	if s.queue == nil {
		return
	}
	studentID := fee.StudentID
	notification := models.Notification{
		ParentID:  payment.ParentID,
		StudentID: &studentID,
		Title:     "Paiement enregistré",
		Message: fmt.Sprintf("Votre paiement de %.2f € pour %s (%s %s) a été enregistré.",
			payment.Amount, fee.FeeTypeName, fee.StudentFirstName, fee.StudentLastName),
		Type: models.NotificationTypePaymentReceived,
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      payment.ID,
		Type:    models.NotificationTypePaymentReceived,
		Payload: notification,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue payment notification",
			zap.String("payment_id", payment.ID),
			zap.Error(err))
	}
}

// DispatchJob persists a queued notification. Wired as the queue handler.
func (s *NotificationService) DispatchJob(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	return s.repo.Create(ctx, &notification)
}
