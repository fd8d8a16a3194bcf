package models

import (
	"time"

	"gorm.io/gorm"
)

// ViewingSlot is a one-hour bookable viewing window. reserved_count is
// mutated only by the reservation endpoints, always through a conditional
// increment so the database arbitrates the last admissible booking.
//
// The unique index on (property_id, start_time) is what makes lazy slot
// generation safe under concurrent first visits: the loser of the insert
// race re-reads instead of duplicating hours.
type ViewingSlot struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	PropertyID    uint      `json:"property_id" gorm:"not null;uniqueIndex:idx_slot_property_start"`
	StartTime     time.Time `json:"start_time" gorm:"column:start_time;not null;uniqueIndex:idx_slot_property_start"`
	EndTime       time.Time `json:"end_time" gorm:"column:end_time;not null"`
	Capacity      int       `json:"capacity" gorm:"not null;default:1"`
	ReservedCount int       `json:"reserved_count" gorm:"not null;default:0"`

	Property *Property `json:"-" gorm:"foreignKey:PropertyID"`
}
