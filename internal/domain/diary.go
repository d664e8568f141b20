package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiaryEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;index;not null" json:"user_id"`
	Title       string    `gorm:"size:128;not null" json:"title"`
	Description string    `gorm:"size:4096;not null" json:"description"`
	Date        time.Time `gorm:"type:date;index;not null" json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Emotions []DiaryEntryEmotion `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (d *DiaryEntry) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DiaryEntryEmotion links a diary entry to one emotion from the reference
// list.
type DiaryEntryEmotion struct {
	DiaryEntryID string  `gorm:"primaryKey;size:36" json:"diary_entry_id"`
	EmotionID    string  `gorm:"primaryKey;size:36" json:"emotion_id"`
	Emotion      Emotion `gorm:"foreignKey:EmotionID" json:"emotion"`
}
