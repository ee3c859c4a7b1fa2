package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// Valid reports whether r is one of the roles a user can sign up with.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleFreelancer
}

type AuthProvider string

const (
	AuthLocal  AuthProvider = "local"
	AuthGoogle AuthProvider = "google"
)

type PortfolioItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"type:varchar(50);not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`

	Password     string       `json:"-"`
	GoogleID     *string      `gorm:"uniqueIndex" json:"-"`
	AuthProvider AuthProvider `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	Role         Role         `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`

	Avatar     string                             `json:"avatar"`
	Bio        string                             `gorm:"type:varchar(500)" json:"bio"`
	Skills     datatypes.JSONSlice[string]        `json:"skills"`
	Portfolio  datatypes.JSONSlice[PortfolioItem] `json:"portfolio"`
	HourlyRate float64                            `gorm:"default:0" json:"hourly_rate"`
	Location   string                             `json:"location"`

	// Not maintained by any code path yet; kept for the profile read model.
	CompletedProjects int     `gorm:"default:0" json:"completed_projects"`
	Rating            float64 `gorm:"default:0" json:"rating"`
	TotalEarnings     float64 `gorm:"default:0" json:"total_earnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
