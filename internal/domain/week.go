package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores a JSON-encoded list of strings in a single text column
// so the same model works on both postgres and the sqlite test driver.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported StringList source type %T", src)
	}
}

// ComfortTip is one categorized suggestion for the mom for a given week.
type ComfortTip struct {
	Category string `json:"category"`
	Tip      string `json:"tip"`
}

type ComfortTipList []ComfortTip

func (l ComfortTipList) Value() (driver.Value, error) {
	if l == nil {
		l = ComfortTipList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ComfortTipList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = ComfortTipList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported ComfortTipList source type %T", src)
	}
}

// WeekBabyState is seeded reference content describing the baby for one
// pregnancy week.
type WeekBabyState struct {
	WeekNumber      int            `gorm:"primaryKey" json:"week_number"`
	Analogy         *string        `gorm:"size:128" json:"analogy"`
	BabySize        float64        `gorm:"not null" json:"baby_size"`
	BabyWeight      float64        `gorm:"not null" json:"baby_weight"`
	Image           string         `gorm:"size:512" json:"image"`
	BabyActivity    string         `gorm:"size:2048" json:"baby_activity"`
	BabyDevelopment string         `gorm:"size:2048" json:"baby_development"`
	InterestingFact string         `gorm:"size:2048" json:"interesting_fact"`
	MomDailyTips    StringList     `gorm:"type:text" json:"mom_daily_tips"`
}

// WeekMomState is seeded reference content describing the mom for one
// pregnancy week.
type WeekMomState struct {
	WeekNumber     int            `gorm:"primaryKey" json:"week_number"`
	FeelingsStates StringList     `gorm:"type:text" json:"feelings_states"`
	SensationDescr string         `gorm:"size:2048" json:"sensation_descr"`
	ComfortTips    ComfortTipList `gorm:"type:text" json:"comfort_tips"`
}
