package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const ReservationStatusConfirmed = "confirmed"

// Reservation is the guest's booking. The token is the only credential the
// guest ever holds; there are no accounts. key_code is write-once (claimed
// with a conditional update), key_returned_at is write-once and terminal,
// survey may be overwritten freely.
type Reservation struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	PropertyID    uint   `json:"property_id" gorm:"not null;index"`
	SlotID        uint   `json:"slot_id" gorm:"not null;index"`
	Name          string `json:"name" gorm:"size:100;not null"`
	Email         string `json:"email" gorm:"size:200;not null"`
	Phone         string `json:"phone" gorm:"size:50;not null"`
	Token         string `json:"token" gorm:"size:64;uniqueIndex;not null"`
	Status        string `json:"status" gorm:"size:32;not null;default:'confirmed';index"`
	StaffRequired bool   `json:"staff_required" gorm:"default:false"`

	KeyCode         *string        `json:"key_code" gorm:"column:key_code;size:4"`
	KeyCodeIssuedAt *time.Time     `json:"key_code_issued_at"`
	KeyReturnedAt   *time.Time     `json:"key_returned_at"`
	Survey          datatypes.JSON `json:"survey,omitempty"`

	Property *Property    `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Slot     *ViewingSlot `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
}
