package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in-progress"
	// Declared for the read model; no transition reaches them yet.
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Categories is the fixed set of project categories, in display order.
var Categories = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX Design",
	"Graphic Design",
	"Content Writing",
	"Digital Marketing",
	"Data Science",
	"DevOps",
	"Video Production",
	"Other",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Category string                      `gorm:"type:varchar(50);not null;index:idx_projects_status_category,priority:2" json:"category"`
	Skills   datatypes.JSONSlice[string] `json:"skills"`
	Budget   Budget                      `gorm:"embedded;embeddedPrefix:budget_" json:"budget"`
	Deadline time.Time                   `json:"deadline"`

	Status               ProjectStatus `gorm:"type:varchar(20);not null;default:'open';index:idx_projects_status_category,priority:1" json:"status"`
	SelectedFreelancerID *uuid.UUID    `gorm:"type:uuid;index" json:"selected_freelancer_id"`

	// Denormalised; only bumped together with a bid insert.
	BidCount int `gorm:"not null;default:0" json:"bid_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Client             *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	SelectedFreelancer *User `gorm:"foreignKey:SelectedFreelancerID" json:"selected_freelancer,omitempty"`
}

// AcceptsBids reports whether the project is still collecting bids.
func (p *Project) AcceptsBids() bool {
	return p.Status == ProjectOpen
}

func (p *Project) OwnedBy(userID uuid.UUID) bool {
	return p.ClientID == userID
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectOpen
	}
	return
}
