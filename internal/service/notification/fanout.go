package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/showrunner/notification-api/internal/model"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
)

// Template is one notification replicated across N recipients. Each
// recipient gets an independent record with its own copy of the payload.
type Template struct {
	Type      model.NotificationType
	Title     string
	Message   string
	SentBy    uuid.UUID
	ProjectID *uuid.UUID
	Data      *model.NotificationData
}

func (t *Template) build(recipient uuid.UUID) *model.Notification {
	var data *model.NotificationData
	if t.Data != nil {
		copied := *t.Data
		data = &copied
	}
	return &model.Notification{
		Type:        t.Type,
		Title:       strings.TrimSpace(t.Title),
		Message:     strings.TrimSpace(t.Message),
		RecipientID: recipient,
		SentByID:    t.SentBy,
		ProjectID:   t.ProjectID,
		Data:        data,
	}
}

// PartialError reports a fan-out where some recipient writes succeeded and
// others failed. The created subset is returned alongside it.
type PartialError struct {
	Failed map[uuid.UUID]error
	Total  int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("fan-out failed for %d of %d recipients", len(e.Failed), e.Total)
}

// Fanout persists one notification per recipient with bounded parallelism.
// No recipient's write depends on another's outcome: a failure for one
// leaves the rest untouched. When only a subset fails, the created records
// are returned together with a PartialError describing the failed subset.
func (s *Service) Fanout(ctx context.Context, tmpl Template, recipients []uuid.UUID) ([]*model.Notification, error) {
	if len(recipients) == 0 {
		return nil, apperrors.NewValidation("at least one recipient is required", nil)
	}

	var timer *prometheus.Timer
	if s.metrics != nil {
		timer = prometheus.NewTimer(s.metrics.FanoutLatency)
		s.metrics.FanoutRecipients.Observe(float64(len(recipients)))
	}

	results := make([]*model.Notification, len(recipients))
	errs := make([]error, len(recipients))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, recipient uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			n := tmpl.build(recipient)
			if err := s.validateRecord(n); err != nil {
				errs[i] = err
				return
			}
			if err := s.repo.Create(ctx, n); err != nil {
				errs[i] = err
				return
			}
			results[i] = n
		}(i, recipient)
	}
	wg.Wait()

	if timer != nil {
		timer.ObserveDuration()
	}

	created := make([]*model.Notification, 0, len(recipients))
	failed := make(map[uuid.UUID]error)
	for i, recipient := range recipients {
		if errs[i] != nil {
			failed[recipient] = errs[i]
			continue
		}
		created = append(created, results[i])
	}

	if s.metrics != nil {
		s.metrics.FanoutNotificationsCreated.Add(float64(len(created)))
		s.metrics.FanoutNotificationsFailed.Add(float64(len(failed)))
	}

	if len(created) == 0 {
		for _, err := range failed {
			return nil, err
		}
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(created)
	}

	if len(failed) > 0 {
		for recipient, err := range failed {
			s.logger.Error(err, "fan-out write failed", "recipient_id", recipient.String())
		}
		return created, &PartialError{Failed: failed, Total: len(recipients)}
	}

	return created, nil
}

func (s *Service) validateRecord(n *model.Notification) error {
	if !n.Type.Valid() {
		return apperrors.NewValidation("unknown notification type", nil)
	}
	if err := s.validate.Struct(n); err != nil {
		return apperrors.NewValidation("invalid notification", err)
	}
	return nil
}

// ScheduleRequest triggers schedule-reminder fan-out for one schedulable item
type ScheduleRequest struct {
	ItemID    uuid.UUID
	ItemType  model.ItemKind
	ProjectID uuid.UUID
	SenderID  uuid.UUID
}

// ScheduleResult reports what a schedule fan-out produced
type ScheduleResult struct {
	Notifications []*model.Notification
	ItemTitle     string
	ItemType      model.ItemKind
}

// CreateScheduleNotifications resolves the schedulable item and its
// recipients, then fans a schedule reminder out to each of them. Recipients
// are the item's assignees, falling back to the project members when the
// item has none.
func (s *Service) CreateScheduleNotifications(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error) {
	if !req.ItemType.Valid() {
		return nil, apperrors.NewValidation("itemType must be 'scene' or 'task'", nil)
	}
	if req.SenderID == uuid.Nil {
		return nil, apperrors.NewValidation("sender is required", nil)
	}

	if _, err := s.directory.Get(ctx, req.SenderID); err != nil {
		return nil, err
	}

	item, err := s.schedule.GetItem(ctx, req.ItemID, req.ItemType)
	if err != nil {
		return nil, err
	}

	recipients := item.AssigneeIDs
	if len(recipients) == 0 {
		members, err := s.directory.ListProjectMembers(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			recipients = append(recipients, m.ID)
		}
	}
	if len(recipients) == 0 {
		return nil, apperrors.NewNotFound("recipients", nil)
	}

	phrase := schedulePhrase(item.ScheduledDate, item.ScheduledTime)
	projectID := req.ProjectID

	tmpl := Template{
		Type:      model.TypeScheduleReminder,
		Title:     fmt.Sprintf("%s Schedule Reminder", req.ItemType.Label()),
		Message:   fmt.Sprintf("You are assigned to %s %q %s", req.ItemType.Noun(), item.Title, phrase),
		SentBy:    req.SenderID,
		ProjectID: &projectID,
		Data: &model.NotificationData{
			ItemID:        item.ID.String(),
			ItemType:      string(req.ItemType),
			ItemTitle:     item.Title,
			ScheduledDate: item.ScheduledDate,
			ScheduledTime: item.ScheduledTime,
			ScheduleInfo:  phrase,
		},
	}

	created, err := s.Fanout(ctx, tmpl, recipients)
	result := &ScheduleResult{
		Notifications: created,
		ItemTitle:     item.Title,
		ItemType:      req.ItemType,
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

// schedulePhrase derives the human-readable fragment describing when a
// scheduled item occurs: "on {date}", "on {date} at {time}", or "soon" when
// no date is set.
func schedulePhrase(date, timeOfDay string) string {
	if date == "" {
		return "soon"
	}
	phrase := "on " + date
	if timeOfDay != "" {
		phrase += " at " + timeOfDay
	}
	return phrase
}
