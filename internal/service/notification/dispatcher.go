package notification

import (
	"context"
	"time"

	"github.com/showrunner/notification-api/internal/email"
	"github.com/showrunner/notification-api/internal/model"
	"github.com/showrunner/notification-api/pkg/logger"
	"github.com/showrunner/notification-api/pkg/messaging"
	"github.com/showrunner/notification-api/pkg/metrics"
)

const dispatchTimeout = 15 * time.Second

// Dispatcher forwards created notifications to interested side channels: a
// broker event per record, and optionally an email copy to the recipient.
// Everything here is best-effort and detached from the request; failures
// are logged and never surface to the producer.
type Dispatcher struct {
	broker      messaging.Broker
	email       email.Service
	directory   Directory
	emailCopies bool
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewDispatcher(
	broker messaging.Broker,
	emailSvc email.Service,
	directory Directory,
	emailCopies bool,
	m *metrics.Metrics,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		broker:      broker,
		email:       emailSvc,
		directory:   directory,
		emailCopies: emailCopies,
		metrics:     m,
		logger:      log,
	}
}

// Dispatch runs asynchronously; the producing request does not wait
func (d *Dispatcher) Dispatch(ns []*model.Notification) {
	if len(ns) == 0 {
		return
	}
	go d.run(ns)
}

func (d *Dispatcher) run(ns []*model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	for _, n := range ns {
		if d.broker != nil {
			d.publish(ctx, n)
		}
		if d.emailCopies && d.email != nil {
			d.sendEmailCopy(ctx, n)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, n *model.Notification) {
	event := messaging.NotificationEvent{
		NotificationID: n.ID.String(),
		RecipientID:    n.RecipientID.String(),
		Type:           string(n.Type),
		Title:          n.Title,
	}
	if n.ProjectID != nil {
		event.ProjectID = n.ProjectID.String()
	}

	if err := d.broker.Publish(ctx, messaging.ChannelNotificationCreated, event); err != nil {
		if d.metrics != nil {
			d.metrics.BrokerPublishes.WithLabelValues("error").Inc()
		}
		d.logger.Error(err, "failed to publish notification event", "notification_id", n.ID.String())
		return
	}
	if d.metrics != nil {
		d.metrics.BrokerPublishes.WithLabelValues("success").Inc()
	}
}

func (d *Dispatcher) sendEmailCopy(ctx context.Context, n *model.Notification) {
	recipient, err := d.directory.Get(ctx, n.RecipientID)
	if err != nil {
		d.logger.Error(err, "failed to resolve recipient for email copy", "notification_id", n.ID.String())
		return
	}

	if err := d.email.SendNotificationCopy(ctx, recipient.Email, n.Title, n.Message); err != nil {
		if d.metrics != nil {
			d.metrics.EmailCopies.WithLabelValues("error").Inc()
		}
		d.logger.Error(err, "failed to send email copy", "notification_id", n.ID.String())
		return
	}
	if d.metrics != nil {
		d.metrics.EmailCopies.WithLabelValues("success").Inc()
	}
}
