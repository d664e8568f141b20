package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender is the expected baby gender recorded on a profile.
type Gender string

const (
	GenderBoy  Gender = "boy"
	GenderGirl Gender = "girl"
)

func (g Gender) Valid() bool {
	return g == GenderBoy || g == GenderGirl
}

type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:32;not null" json:"name"`
	Email        string     `gorm:"size:64;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	Gender       *Gender    `gorm:"size:8" json:"gender,omitempty"`
	DueDate      *time.Time `gorm:"type:date" json:"due_date,omitempty"`
	AvatarURL    *string    `gorm:"size:512" json:"avatar_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Sessions []Session `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
