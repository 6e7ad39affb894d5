package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType is the closed set of event kinds a notification can carry
type NotificationType string

const (
	TypeScheduleReminder NotificationType = "schedule_reminder"
	TypeChatMessage      NotificationType = "chat_message"
	TypeTaskUpdate       NotificationType = "task_update"
	TypeSceneUpdate      NotificationType = "scene_update"
)

func (t NotificationType) Valid() bool {
	switch t {
	case TypeScheduleReminder, TypeChatMessage, TypeTaskUpdate, TypeSceneUpdate:
		return true
	}
	return false
}

// NotificationData is the typed event-specific payload. All fields are
// optional strings; which ones are set depends on the notification type.
type NotificationData struct {
	ItemID        string `json:"itemId,omitempty"`
	ItemType      string `json:"itemType,omitempty"`
	ItemTitle     string `json:"itemTitle,omitempty"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
	ScheduleInfo  string `json:"scheduleInfo,omitempty"`
}

// Value stores the payload as JSONB
func (d NotificationData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *NotificationData) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported notification data type %T", src)
	}
}

// Notification is one per-recipient record. Records are immutable after
// creation except for the read/read_at pair.
type Notification struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	Type        NotificationType  `db:"type" json:"type" validate:"required,oneof=schedule_reminder chat_message task_update scene_update"`
	Title       string            `db:"title" json:"title" validate:"required,max=200"`
	Message     string            `db:"message" json:"message" validate:"required,max=1000"`
	RecipientID uuid.UUID         `db:"recipient_id" json:"recipientId" validate:"required"`
	SentByID    uuid.UUID         `db:"sent_by_id" json:"sentById" validate:"required"`
	ProjectID   *uuid.UUID        `db:"project_id" json:"projectId,omitempty"`
	Data        *NotificationData `db:"data" json:"data,omitempty"`
	Read        bool              `db:"read" json:"read"`
	ReadAt      *time.Time        `db:"read_at" json:"readAt,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}

// MarshalJSON adds the presentation-only formatted date and time fields
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		FormattedDate string `json:"formattedDate"`
		FormattedTime string `json:"formattedTime"`
	}{
		alias:         alias(n),
		FormattedDate: n.CreatedAt.Format("2006-01-02"),
		FormattedTime: n.CreatedAt.Format("15:04:05"),
	})
}

// NotificationFilter scopes list and count queries. RecipientID is required;
// ProjectID and UnreadOnly narrow the match.
type NotificationFilter struct {
	RecipientID uuid.UUID
	ProjectID   *uuid.UUID
	UnreadOnly  bool
	Page        int
	Limit       int
}

func (f *NotificationFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// NotificationPage is one page of a recipient's inbox
type NotificationPage struct {
	Items       []*Notification
	Page        int
	Pages       int
	Total       int
	Limit       int
	UnreadCount int
}
