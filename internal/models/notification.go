package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationNewBid        NotificationType = "new_bid"
	NotificationBidAccepted   NotificationType = "bid_accepted"
	NotificationBidRejected   NotificationType = "bid_rejected"
	NotificationProjectUpdate NotificationType = "project_update"
	NotificationGeneral       NotificationType = "general"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationNewBid, NotificationBidAccepted, NotificationBidRejected,
		NotificationProjectUpdate, NotificationGeneral:
		return true
	}
	return false
}

type Notification struct {
	ID      uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_inbox,priority:1" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`

	// Weak reference: the project may have been deleted since.
	RelatedProjectID *uuid.UUID `gorm:"type:uuid" json:"related_project_id,omitempty"`

	Read      bool      `gorm:"not null;default:false;index:idx_notifications_inbox,priority:2" json:"read"`
	CreatedAt time.Time `gorm:"index:idx_notifications_inbox,priority:3" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RelatedProject *Project `gorm:"foreignKey:RelatedProjectID" json:"related_project,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
