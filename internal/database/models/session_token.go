package models

import "github.com/google/uuid"

// SessionToken is the opaque, store-backed bearer credential. One row per
// user; logging in returns the existing row, logging out deletes it.
type SessionToken struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Key    string    `gorm:"size:64;uniqueIndex;not null" json:"key"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (SessionToken) TableName() string {
	return "session_tokens"
}
