// Package notifications persists user notifications and pushes them to the
// user's live channel.
package notifications

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/telemetry"
)

// InboxLimit caps how many notifications List returns.
const InboxLimit = 50

type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Dispatcher struct {
	store Store
	pub   realtime.Publisher
}

func NewDispatcher(store Store, pub realtime.Publisher) *Dispatcher {
	return &Dispatcher{store: store, pub: pub}
}

type Input struct {
	UserID           uuid.UUID
	Type             models.NotificationType
	Title            string
	Message          string
	RelatedProjectID *uuid.UUID
}

func (in Input) validate() error {
	fields := apperror.FieldErrors{}
	if in.UserID == uuid.Nil {
		fields.Add("user", "is required")
	}
	if !in.Type.Valid() {
		fields.Add("type", "is not a known notification type")
	}
	if strings.TrimSpace(in.Title) == "" {
		fields.Add("title", "is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		fields.Add("message", "is required")
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid notification", fields)
	}
	return nil
}

// Notify stores the notification and pushes it on the user's topic. A failed
// push is logged; the stored notification is still returned.
func (d *Dispatcher) Notify(ctx context.Context, in Input) (*models.Notification, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "notifications.Notify",
		trace.WithAttributes(
			attribute.String("user.id", in.UserID.String()),
			attribute.String("notification.type", string(in.Type)),
		))
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	n := &models.Notification{
		UserID:           in.UserID,
		Type:             in.Type,
		Title:            strings.TrimSpace(in.Title),
		Message:          strings.TrimSpace(in.Message),
		RelatedProjectID: in.RelatedProjectID,
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		span.RecordError(err)
		return nil, apperror.Unavailable("store notification", err)
	}

	if err := d.pub.Publish(ctx, realtime.UserTopic(n.UserID), realtime.EventNotification, n); err != nil {
		log.Printf("[notifications] push to user %s failed: %v", n.UserID, err)
	}
	return n, nil
}

type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// List returns the newest notifications of a user and the unread total.
func (d *Dispatcher) List(ctx context.Context, userID uuid.UUID) (*Inbox, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "notifications.List")
	defer span.End()

	rows, err := d.store.ListNotifications(ctx, userID, InboxLimit)
	if err != nil {
		return nil, apperror.Unavailable("list notifications", err)
	}
	unread, err := d.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, apperror.Unavailable("count notifications", err)
	}
	if rows == nil {
		rows = []models.Notification{}
	}
	return &Inbox{Notifications: rows, UnreadCount: unread}, nil
}

// MarkAllRead flips every unread notification of the user and reports how
// many changed.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := d.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, apperror.Unavailable("mark notifications read", err)
	}
	return n, nil
}
