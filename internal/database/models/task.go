package models

import "github.com/google/uuid"

// Task belongs to exactly one profile. The owner is always assigned
// server-side from the authenticated caller.
type Task struct {
	Base
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Complete  bool      `gorm:"default:false" json:"complete"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
