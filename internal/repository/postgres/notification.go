package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/showrunner/notification-api/internal/model"
	"github.com/showrunner/notification-api/internal/repository"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

const notificationColumns = `
	id, type, title, message, recipient_id, sent_by_id,
	project_id, data, read, read_at, created_at, updated_at
`

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, type, title, message, recipient_id, sent_by_id,
			project_id, data, read, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	n.Read = false
	n.ReadAt = nil

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.Type,
		n.Title,
		n.Message,
		n.RecipientID,
		n.SentByID,
		n.ProjectID,
		n.Data,
		n.Read,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return translateError(err, "notification")
	}

	return nil
}

// CreateBatch inserts all records in one transaction. The fan-out path does
// not use this; its per-recipient writes are independent units. This serves
// producers that need all-or-nothing semantics for a single recipient's set.
func (r *notificationRepository) CreateBatch(ctx context.Context, ns []*model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO notifications (
				id, type, title, message, recipient_id, sent_by_id,
				project_id, data, read, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		now := time.Now()
		for _, n := range ns {
			if n.ID == uuid.Nil {
				n.ID = uuid.New()
			}
			n.CreatedAt = now
			n.UpdatedAt = now
			n.Read = false
			n.ReadAt = nil

			if _, err := tx.ExecContext(ctx, query,
				n.ID, n.Type, n.Title, n.Message, n.RecipientID, n.SentByID,
				n.ProjectID, n.Data, n.Read, n.CreatedAt, n.UpdatedAt,
			); err != nil {
				return translateError(err, "notification")
			}
		}
		return nil
	})
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return nil, translateError(err, "notification")
	}

	return &n, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translateError(err, "notification")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "notification")
	}
	if rows == 0 {
		return apperrors.NewNotFound("notification", nil)
	}

	return nil
}

func (r *notificationRepository) List(ctx context.Context, filter *model.NotificationFilter) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	args := []interface{}{filter.RecipientID}

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND project_id = $%d", len(args)+1)
		args = append(args, *filter.ProjectID)
	}

	if filter.UnreadOnly {
		query += " AND read = FALSE"
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	notifications := []*model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, translateError(err, "notification")
	}

	return notifications, nil
}

func (r *notificationRepository) Count(ctx context.Context, filter *model.NotificationFilter) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`
	args := []interface{}{filter.RecipientID}

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND project_id = $%d", len(args)+1)
		args = append(args, *filter.ProjectID)
	}

	if filter.UnreadOnly {
		query += " AND read = FALSE"
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, translateError(err, "notification")
	}

	return count, nil
}

// UnreadCount is always computed from current store state, never cached
func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`
	args := []interface{}{recipientID}

	if projectID != nil {
		query += " AND project_id = $2"
		args = append(args, *projectID)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, translateError(err, "notification")
	}

	return count, nil
}

// MarkRead is a single statement so read_at is set exactly once: COALESCE
// preserves the original timestamp when the record is already read.
func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `
		UPDATE notifications
		SET read = TRUE,
		    read_at = COALESCE(read_at, NOW()),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + notificationColumns

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return nil, translateError(err, "notification")
	}

	return &n, nil
}

// MarkAllRead is one atomic conditional bulk update. Anything created after
// the statement runs keeps its unread state; nothing is read-modify-written.
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET read = TRUE, read_at = NOW(), updated_at = NOW()
		WHERE recipient_id = $1 AND read = FALSE
	`
	args := []interface{}{recipientID}

	if projectID != nil {
		query += " AND project_id = $2"
		args = append(args, *projectID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateError(err, "notification")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, translateError(err, "notification")
	}

	return rows, nil
}
