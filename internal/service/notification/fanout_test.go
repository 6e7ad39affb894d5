package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showrunner/notification-api/internal/model"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
)

func testTemplate() Template {
	return Template{
		Type:    model.TypeTaskUpdate,
		Title:   "Task Update",
		Message: "A task you follow changed",
		SentBy:  uuid.New(),
	}
}

func TestFanoutOneRecordPerRecipient(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newMemSchedule(), newMemDirectory())
	recipients := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	created, err := svc.Fanout(context.Background(), testTemplate(), recipients)
	require.NoError(t, err)
	require.Len(t, created, 3)

	byRecipient := make(map[uuid.UUID]*model.Notification)
	for _, n := range created {
		assert.NotEqual(t, uuid.Nil, n.ID)
		assert.False(t, n.Read)
		assert.Nil(t, n.ReadAt)
		byRecipient[n.RecipientID] = n
	}
	for _, r := range recipients {
		assert.Contains(t, byRecipient, r)
	}
}

func TestFanoutCopiesPayloadPerRecipient(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newMemSchedule(), newMemDirectory())

	tmpl := testTemplate()
	tmpl.Data = &model.NotificationData{ItemTitle: "Kitchen Scene"}

	created, err := svc.Fanout(context.Background(), tmpl, []uuid.UUID{uuid.New(), uuid.New()})
	require.NoError(t, err)
	require.Len(t, created, 2)

	require.NotSame(t, created[0].Data, created[1].Data)
	created[0].Data.ItemTitle = "mutated"
	assert.Equal(t, "Kitchen Scene", created[1].Data.ItemTitle)
}

func TestFanoutEmptyRecipients(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemSchedule(), newMemDirectory())

	_, err := svc.Fanout(context.Background(), testTemplate(), nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestFanoutPartialFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newMemSchedule(), newMemDirectory())

	ok1, bad, ok2 := uuid.New(), uuid.New(), uuid.New()
	repo.failFor[bad] = apperrors.NewTransient("store unavailable", errors.New("connection reset"))

	created, err := svc.Fanout(context.Background(), testTemplate(), []uuid.UUID{ok1, bad, ok2})
	require.Error(t, err)

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 3, partial.Total)
	require.Len(t, partial.Failed, 1)
	assert.Contains(t, partial.Failed, bad)

	require.Len(t, created, 2)
	for _, n := range created {
		assert.NotEqual(t, bad, n.RecipientID)
	}
}

func TestFanoutAllFailed(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, newMemSchedule(), newMemDirectory())

	r1, r2 := uuid.New(), uuid.New()
	repo.failFor[r1] = apperrors.NewTransient("store unavailable", nil)
	repo.failFor[r2] = apperrors.NewTransient("store unavailable", nil)

	created, err := svc.Fanout(context.Background(), testTemplate(), []uuid.UUID{r1, r2})
	require.Error(t, err)

	var partial *PartialError
	assert.False(t, errors.As(err, &partial))
	assert.True(t, apperrors.IsTransient(err))
	assert.Empty(t, created)
}

func TestFanoutRejectsOversizedTitle(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemSchedule(), newMemDirectory())

	tmpl := testTemplate()
	tmpl.Title = strings.Repeat("x", 201)

	_, err := svc.Fanout(context.Background(), tmpl, []uuid.UUID{uuid.New()})
	assert.True(t, apperrors.IsValidation(err))
}

func TestSchedulePhrase(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
		want string
	}{
		{"date and time", "2025-10-07", "09:00", "on 2025-10-07 at 09:00"},
		{"date only", "2025-10-07", "", "on 2025-10-07"},
		{"no date", "", "", "soon"},
		{"time without date", "", "09:00", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedulePhrase(tt.date, tt.time))
		})
	}
}

func TestCreateScheduleNotificationsForScene(t *testing.T) {
	repo := newMemRepo()
	sched := newMemSchedule()
	dir := newMemDirectory()
	svc := newTestService(repo, sched, dir)

	sender := dir.addUser(uuid.New())
	a1, a2 := uuid.New(), uuid.New()
	projectID := uuid.New()
	itemID := uuid.New()
	sched.items[itemID] = &model.ScheduleItem{
		ID:            itemID,
		Kind:          model.ItemKindScene,
		Title:         "Kitchen Scene",
		ProjectID:     projectID,
		ScheduledDate: "2025-10-07",
		ScheduledTime: "09:00",
		AssigneeIDs:   []uuid.UUID{a1, a2},
	}

	result, err := svc.CreateScheduleNotifications(context.Background(), ScheduleRequest{
		ItemID:    itemID,
		ItemType:  model.ItemKindScene,
		ProjectID: projectID,
		SenderID:  sender.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Kitchen Scene", result.ItemTitle)
	assert.Equal(t, model.ItemKindScene, result.ItemType)
	require.Len(t, result.Notifications, 2)

	n := result.Notifications[0]
	assert.Equal(t, model.TypeScheduleReminder, n.Type)
	assert.Equal(t, "Scene Schedule Reminder", n.Title)
	assert.Equal(t, `You are assigned to scene "Kitchen Scene" on 2025-10-07 at 09:00`, n.Message)
	assert.Equal(t, sender.ID, n.SentByID)
	require.NotNil(t, n.ProjectID)
	assert.Equal(t, projectID, *n.ProjectID)
	require.NotNil(t, n.Data)
	assert.Equal(t, "Kitchen Scene", n.Data.ItemTitle)
	assert.Equal(t, "scene", n.Data.ItemType)
	assert.Equal(t, "on 2025-10-07 at 09:00", n.Data.ScheduleInfo)
}

func TestCreateScheduleNotificationsUnscheduledTask(t *testing.T) {
	repo := newMemRepo()
	sched := newMemSchedule()
	dir := newMemDirectory()
	svc := newTestService(repo, sched, dir)

	sender := dir.addUser(uuid.New())
	assignee := uuid.New()
	itemID := uuid.New()
	projectID := uuid.New()
	sched.items[itemID] = &model.ScheduleItem{
		ID:          itemID,
		Kind:        model.ItemKindTask,
		Title:       "Rig Lights",
		ProjectID:   projectID,
		AssigneeIDs: []uuid.UUID{assignee},
	}

	result, err := svc.CreateScheduleNotifications(context.Background(), ScheduleRequest{
		ItemID:    itemID,
		ItemType:  model.ItemKindTask,
		ProjectID: projectID,
		SenderID:  sender.ID,
	})
	require.NoError(t, err)

	require.Len(t, result.Notifications, 1)
	n := result.Notifications[0]
	assert.Equal(t, "Task Schedule Reminder", n.Title)
	assert.Equal(t, `You are assigned to task "Rig Lights" soon`, n.Message)
}

func TestCreateScheduleNotificationsFallsBackToProjectMembers(t *testing.T) {
	repo := newMemRepo()
	sched := newMemSchedule()
	dir := newMemDirectory()
	svc := newTestService(repo, sched, dir)

	sender := dir.addUser(uuid.New())
	projectID := uuid.New()
	m1 := dir.addUser(uuid.New())
	m2 := dir.addUser(uuid.New())
	dir.members[projectID] = []*model.User{m1, m2}

	itemID := uuid.New()
	sched.items[itemID] = &model.ScheduleItem{
		ID:        itemID,
		Kind:      model.ItemKindScene,
		Title:     "Rooftop Scene",
		ProjectID: projectID,
	}

	result, err := svc.CreateScheduleNotifications(context.Background(), ScheduleRequest{
		ItemID:    itemID,
		ItemType:  model.ItemKindScene,
		ProjectID: projectID,
		SenderID:  sender.ID,
	})
	require.NoError(t, err)

	require.Len(t, result.Notifications, 2)
	got := map[uuid.UUID]bool{}
	for _, n := range result.Notifications {
		got[n.RecipientID] = true
	}
	assert.True(t, got[m1.ID])
	assert.True(t, got[m2.ID])
}

func TestCreateScheduleNotificationsNoRecipients(t *testing.T) {
	repo := newMemRepo()
	sched := newMemSchedule()
	dir := newMemDirectory()
	svc := newTestService(repo, sched, dir)

	sender := dir.addUser(uuid.New())
	itemID := uuid.New()
	projectID := uuid.New()
	sched.items[itemID] = &model.ScheduleItem{
		ID:        itemID,
		Kind:      model.ItemKindTask,
		Title:     "Orphan Task",
		ProjectID: projectID,
	}

	_, err := svc.CreateScheduleNotifications(context.Background(), ScheduleRequest{
		ItemID:    itemID,
		ItemType:  model.ItemKindTask,
		ProjectID: projectID,
		SenderID:  sender.ID,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateScheduleNotificationsInvalidKind(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemSchedule(), newMemDirectory())

	_, err := svc.CreateScheduleNotifications(context.Background(), ScheduleRequest{
		ItemID:    uuid.New(),
		ItemType:  model.ItemKind("shot"),
		ProjectID: uuid.New(),
		SenderID:  uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "itemType must be 'scene' or 'task'")
}

func TestCreateScheduleNotificationsUnknownSender(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemSchedule(), newMemDirectory())

	_, err := svc.CreateScheduleNotifications(context.Background(), ScheduleRequest{
		ItemID:    uuid.New(),
		ItemType:  model.ItemKindScene,
		ProjectID: uuid.New(),
		SenderID:  uuid.New(),
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateScheduleNotificationsPartialFailure(t *testing.T) {
	repo := newMemRepo()
	sched := newMemSchedule()
	dir := newMemDirectory()
	svc := newTestService(repo, sched, dir)

	sender := dir.addUser(uuid.New())
	ok, bad := uuid.New(), uuid.New()
	repo.failFor[bad] = fmt.Errorf("write failed")

	itemID := uuid.New()
	projectID := uuid.New()
	sched.items[itemID] = &model.ScheduleItem{
		ID:          itemID,
		Kind:        model.ItemKindScene,
		Title:       "Garage Scene",
		ProjectID:   projectID,
		AssigneeIDs: []uuid.UUID{ok, bad},
	}

	result, err := svc.CreateScheduleNotifications(context.Background(), ScheduleRequest{
		ItemID:    itemID,
		ItemType:  model.ItemKindScene,
		ProjectID: projectID,
		SenderID:  sender.ID,
	})

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	require.NotNil(t, result)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, ok, result.Notifications[0].RecipientID)
}
