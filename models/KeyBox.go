package models

import (
	"time"

	"gorm.io/gorm"
)

// KeyBox describes where the physical box hangs and its static passcode.
// This is the box's own combination, not the per-visit key code.
type KeyBox struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	PropertyID uint   `json:"property_id" gorm:"not null;index"`
	Location   string `json:"location" gorm:"size:200;not null"`
	Passcode   string `json:"passcode" gorm:"size:10;not null"`

	Property *Property `json:"-" gorm:"foreignKey:PropertyID"`
}
