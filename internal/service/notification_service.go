package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/config"
	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/repository"
)

// EmailSender delivers one queued message to its transport.
type EmailSender interface {
	Send(ctx context.Context, notification domain.EmailNotification) error
}

// NotificationService queues email notifications for domain events and
// drains the queue through a sender. Writes are fire-and-forget; a failed
// queue insert never fails the triggering request.
type NotificationService struct {
	dispatcher events.Dispatcher
	items      repository.CorrespondenceRepository
	emails     repository.EmailNotificationRepository
	sender     EmailSender
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service with the log-only sender.
func NewNotificationService(dispatcher events.Dispatcher, items repository.CorrespondenceRepository, emails repository.EmailNotificationRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		items:      items,
		emails:     emails,
		sender:     &logSender{logger: logger, from: cfg.EmailFrom},
		logger:     logger,
		cfg:        cfg,
	}
}

// SetSender swaps the delivery transport.
func (n *NotificationService) SetSender(sender EmailSender) {
	if sender != nil {
		n.sender = sender
	}
}

// logSender records deliveries in the log. It stands in until an SMTP
// transport is configured; queued rows are still marked sent so the queue
// drains in development.
type logSender struct {
	logger *zap.Logger
	from   string
}

func (s *logSender) Send(_ context.Context, notification domain.EmailNotification) error {
	s.logger.Info("email notification delivered",
		zap.String("from", s.from),
		zap.Int64("recipient_id", notification.RecipientID),
		zap.String("subject", notification.Subject))
	return nil
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCorrespondenceCreated, n.handleCreated)
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventAssignmentChanged, n.handleAssignmentChanged)
}

func (n *NotificationService) handleCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CorrespondenceCreatedPayload)
	if !ok {
		return nil
	}
	if payload.AssignedToID == nil {
		return nil
	}
	subject := fmt.Sprintf("New correspondence assigned: %s", payload.ReferenceNumber)
	body := fmt.Sprintf("%s (%s, %s priority) has been assigned to you. Due %s.",
		payload.Subject, payload.Type, payload.Priority, payload.DueDate.Format("Jan 02, 2006"))
	n.queue(ctx, event.CorrespondenceID, *payload.AssignedToID, subject, body)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	item, err := n.items.GetByID(ctx, event.CorrespondenceID)
	if err != nil {
		n.logger.Warn("notification lookup failed", zap.Int64("correspondence_id", event.CorrespondenceID), zap.Error(err))
		return nil
	}
	if item.AssignedToID == nil {
		return nil
	}
	subject := fmt.Sprintf("Status update: %s", item.ReferenceNumber)
	body := fmt.Sprintf("%s moved from %s to %s.", item.Subject, payload.OldStatus, payload.NewStatus)
	n.queue(ctx, item.ID, *item.AssignedToID, subject, body)
	return nil
}

func (n *NotificationService) handleAssignmentChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AssignmentChangedPayload)
	if !ok {
		return nil
	}
	if payload.AssignedToID == nil {
		return nil
	}
	item, err := n.items.GetByID(ctx, event.CorrespondenceID)
	if err != nil {
		n.logger.Warn("notification lookup failed", zap.Int64("correspondence_id", event.CorrespondenceID), zap.Error(err))
		return nil
	}
	subject := fmt.Sprintf("Correspondence assigned: %s", item.ReferenceNumber)
	body := fmt.Sprintf("%s has been assigned to you. Due %s.", item.Subject, item.DueDate.Format("Jan 02, 2006"))
	n.queue(ctx, item.ID, *payload.AssignedToID, subject, body)
	return nil
}

// DispatchPending delivers up to limit queued messages and marks each one
// sent. A delivery failure leaves the row pending for the next pass.
func (n *NotificationService) DispatchPending(ctx context.Context, limit int) (int, error) {
	if n.emails == nil {
		return 0, nil
	}
	pending, err := n.emails.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, notification := range pending {
		if err := n.sender.Send(ctx, notification); err != nil {
			n.logger.Warn("email delivery failed",
				zap.Int64("notification_id", notification.ID),
				zap.Error(err))
			continue
		}
		if err := n.emails.MarkSent(ctx, notification.ID); err != nil {
			n.logger.Warn("mark notification sent failed",
				zap.Int64("notification_id", notification.ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *NotificationService) queue(ctx context.Context, correspondenceID, recipientID int64, subject, body string) {
	if n.emails == nil {
		return
	}
	notification := &domain.EmailNotification{
		CorrespondenceID: correspondenceID,
		RecipientID:      recipientID,
		Subject:          subject,
		Body:             body,
		Status:           domain.EmailNotificationPending,
	}
	if err := n.emails.Create(ctx, notification); err != nil {
		n.logger.Warn("queue email notification failed",
			zap.Int64("correspondence_id", correspondenceID),
			zap.Int64("recipient_id", recipientID),
			zap.Error(err))
		return
	}
	n.logger.Debug("email notification queued",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("notification_id", notification.ID),
		zap.Int64("recipient_id", recipientID))
}
