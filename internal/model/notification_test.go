package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationJSONIncludesFormattedFields(t *testing.T) {
	n := Notification{
		ID:          uuid.New(),
		Type:        TypeScheduleReminder,
		Title:       "Scene Schedule Reminder",
		Message:     `You are assigned to scene "Kitchen Scene" soon`,
		RecipientID: uuid.New(),
		SentByID:    uuid.New(),
		CreatedAt:   time.Date(2025, 10, 7, 9, 30, 15, 0, time.UTC),
	}

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2025-10-07", decoded["formattedDate"])
	assert.Equal(t, "09:30:15", decoded["formattedTime"])
	// unread records omit readAt entirely
	assert.NotContains(t, decoded, "readAt")
	assert.Equal(t, false, decoded["read"])
}

func TestNotificationDataScan(t *testing.T) {
	var d NotificationData
	require.NoError(t, d.Scan([]byte(`{"itemTitle":"Kitchen Scene","scheduleInfo":"soon"}`)))
	assert.Equal(t, "Kitchen Scene", d.ItemTitle)
	assert.Equal(t, "soon", d.ScheduleInfo)

	var empty NotificationData
	require.NoError(t, empty.Scan(nil))
	assert.Equal(t, NotificationData{}, empty)

	assert.Error(t, empty.Scan(42))
}

func TestFilterOffset(t *testing.T) {
	f := NotificationFilter{Page: 3, Limit: 20}
	assert.Equal(t, 40, f.Offset())
}

func TestNotificationTypeValid(t *testing.T) {
	assert.True(t, TypeChatMessage.Valid())
	assert.False(t, NotificationType("email").Valid())
}
