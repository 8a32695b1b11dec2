package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecoleconnect/portail-api/internal/models"
)

// NotificationRepository manages payment notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ListByParent returns the parent's latest notifications.
func (r *NotificationRepository) ListByParent(ctx context.Context, parentID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT id, parent_id, student_id, title, message, type, is_read, created_at
        FROM payment_notifications WHERE parent_id = $1 ORDER BY created_at DESC LIMIT $2`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, parentID, limit); err != nil {
		return nil, fmt.Errorf("list notifications by parent: %w", err)
	}
	return notifications, nil
}

// FindByID fetches one notification by ID.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	const query = `SELECT id, parent_id, student_id, title, message, type, is_read, created_at
        FROM payment_notifications WHERE id = $1 LIMIT 1`
	var notification models.Notification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notification by id: %w", err)
	}
	return &notification, nil
}

// MarkRead flips the is_read flag.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE payment_notifications SET is_read = true WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// Create inserts a notification row. Used by the async dispatcher after a
// payment is recorded.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payment_notifications (id, parent_id, student_id, title, message, type, is_read, created_at)
        VALUES (:id, :parent_id, :student_id, :title, :message, :type, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
