package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

// MaxProposalLength is measured in runes.
const MaxProposalLength = 2000

type Bid struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bids_project_freelancer,priority:1" json:"project_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bids_project_freelancer,priority:2;index" json:"freelancer_id"`

	Amount       float64   `gorm:"not null" json:"amount"`
	DeliveryDays int       `gorm:"not null" json:"delivery_days"`
	Proposal     string    `gorm:"type:text;not null" json:"proposal"`
	Status       BidStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Project    *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Freelancer *User    `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

// Terminal reports whether the bid has been decided.
func (b *Bid) Terminal() bool {
	return b.Status == BidAccepted || b.Status == BidRejected
}

func (b *Bid) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BidPending
	}
	return
}
