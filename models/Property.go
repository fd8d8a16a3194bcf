package models

import (
	"time"

	"gorm.io/gorm"
)

// Property is owned by the admin data-entry surface; the viewing flow only
// ever reads it.
type Property struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name        string `json:"name" gorm:"size:200;not null"`
	Address     string `json:"address" gorm:"size:300;not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url" gorm:"column:image_url;size:500"`

	ViewingSlots []ViewingSlot `json:"viewing_slots,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Reservations []Reservation `json:"reservations,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
