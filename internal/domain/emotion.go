package domain

// Emotion is seeded reference data used to tag diary entries.
type Emotion struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Title string `gorm:"size:64;not null" json:"title"`
}
