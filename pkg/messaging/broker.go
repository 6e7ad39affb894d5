package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channel names used by the notification service. Consumers are free to
// ignore them; publishing is best-effort and carries no delivery guarantee.
const (
	ChannelNotificationCreated = "notifications.created"
)

// NotificationEvent is the payload published when a notification is created
type NotificationEvent struct {
	NotificationID string `json:"notificationId"`
	RecipientID    string `json:"recipientId"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	ProjectID      string `json:"projectId,omitempty"`
}
