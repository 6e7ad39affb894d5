package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/showrunner/notification-api/internal/model"
)

type (
	// NotificationRepository persists notification records and enforces the
	// record invariants at write time. Mutation is limited to the read/read_at
	// pair and hard deletes.
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		CreateBatch(ctx context.Context, ns []*model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.NotificationFilter) ([]*model.Notification, error)
		Count(ctx context.Context, filter *model.NotificationFilter) (int, error)
		UnreadCount(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int, error)
		// MarkRead flips read to true and sets read_at exactly once; calling it
		// on an already-read record is a no-op that returns the record.
		MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		// MarkAllRead is a single atomic conditional bulk update; it returns
		// the number of records actually transitioned.
		MarkAllRead(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int64, error)
	}

	// UserRepository is the read-only user directory collaborator
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]*model.User, error)
	}

	// ScheduleRepository is the read-only scheduling feature collaborator
	ScheduleRepository interface {
		GetItem(ctx context.Context, id uuid.UUID, kind model.ItemKind) (*model.ScheduleItem, error)
	}
)
