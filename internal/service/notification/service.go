package notification

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/showrunner/notification-api/internal/model"
	"github.com/showrunner/notification-api/internal/repository"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
	"github.com/showrunner/notification-api/pkg/logger"
	"github.com/showrunner/notification-api/pkg/metrics"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// Directory resolves and enumerates user identities. The notification
// service only reads from it.
type Directory interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]*model.User, error)
}

// Service owns the notification lifecycle: fan-out creation, read-state
// transitions, queries and deletes.
type Service struct {
	repo       repository.NotificationRepository
	schedule   repository.ScheduleRepository
	directory  Directory
	dispatcher *Dispatcher
	validate   *validator.Validate
	metrics    *metrics.Metrics
	logger     *logger.Logger
	workers    int
}

func NewService(
	repo repository.NotificationRepository,
	schedule repository.ScheduleRepository,
	directory Directory,
	dispatcher *Dispatcher,
	m *metrics.Metrics,
	log *logger.Logger,
	fanoutWorkers int,
) *Service {
	if fanoutWorkers <= 0 {
		fanoutWorkers = 8
	}
	return &Service{
		repo:       repo,
		schedule:   schedule,
		directory:  directory,
		dispatcher: dispatcher,
		validate:   validator.New(),
		metrics:    m,
		logger:     log,
		workers:    fanoutWorkers,
	}
}

// observe wraps a store call with operation metrics
func (s *Service) observe(op string, fn func() error) error {
	var timer *prometheus.Timer
	if s.metrics != nil {
		timer = prometheus.NewTimer(s.metrics.StoreLatency.WithLabelValues(op))
	}
	err := fn()
	if s.metrics != nil {
		timer.ObserveDuration()
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	}
	return err
}

// List returns one page of a recipient's inbox, most recent first, together
// with the total matching count and the live unread count. The unread count
// is scoped to recipient+project only, so the badge stays truthful even when
// the caller views read items.
func (s *Service) List(ctx context.Context, filter *model.NotificationFilter) (*model.NotificationPage, error) {
	if filter.RecipientID == uuid.Nil {
		return nil, apperrors.NewValidation("recipient is required", nil)
	}
	if filter.Page < 0 || filter.Limit < 0 {
		return nil, apperrors.NewValidation("page and limit must be positive", nil)
	}
	if filter.Page == 0 {
		filter.Page = defaultPage
	}
	if filter.Limit == 0 {
		filter.Limit = defaultLimit
	}

	var items []*model.Notification
	err := s.observe("list", func() error {
		var err error
		items, err = s.repo.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	unread, err := s.repo.UnreadCount(ctx, filter.RecipientID, filter.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &model.NotificationPage{
		Items:       items,
		Page:        filter.Page,
		Pages:       (total + filter.Limit - 1) / filter.Limit,
		Total:       total,
		Limit:       filter.Limit,
		UnreadCount: unread,
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n *model.Notification
	err := s.observe("get", func() error {
		var err error
		n, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// MarkRead transitions one notification to read. Idempotent: a second call
// succeeds and leaves read_at untouched.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n *model.Notification
	err := s.observe("mark_read", func() error {
		var err error
		n, err = s.repo.MarkRead(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReadStateTransitions.WithLabelValues("mark_read").Inc()
	}
	return n, nil
}

// MarkAllRead transitions every unread notification in scope in one atomic
// bulk update and returns how many actually changed.
func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, apperrors.NewValidation("recipient is required", nil)
	}

	var modified int64
	err := s.observe("mark_all_read", func() error {
		var err error
		modified, err = s.repo.MarkAllRead(ctx, recipientID, projectID)
		return err
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.ReadStateTransitions.WithLabelValues("mark_all_read").Add(float64(modified))
	}
	return modified, nil
}

// UnreadCount is always computed from current store state
func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int, error) {
	if recipientID == uuid.Nil {
		return 0, apperrors.NewValidation("recipient is required", nil)
	}

	var count int
	err := s.observe("unread_count", func() error {
		var err error
		count, err = s.repo.UnreadCount(ctx, recipientID, projectID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete hard-deletes one notification. No tombstone is kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.observe("delete", func() error {
		return s.repo.Delete(ctx, id)
	})
}
