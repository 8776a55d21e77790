package models

import (
	"time"
)

// A single food log entry. The server assigns IDs on create; a zero ID marks
// an entry that has not been persisted yet.
type Food struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Calories  int       `json:"calories"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// FoodRecord is the raw wire shape of a food entry inside an API envelope.
type FoodRecord struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Date     string  `json:"date"`
}

// AdaptFood normalizes a raw record into a Food. It never fails: missing
// fields fall back to zero values and an unparseable date stays the zero time.
func AdaptFood(raw FoodRecord) Food {
	food := Food{
		ID:   raw.ID,
		Name: raw.Name,
	}
	if raw.Calories > 0 {
		food.Calories = int(raw.Calories)
	}
	if raw.Date != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Date); err == nil {
			food.Date = ts
		}
	}
	return food
}
