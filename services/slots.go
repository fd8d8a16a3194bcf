package services

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"gorm.io/gorm"

	"github.com/yuhigori/mujinnaiken/models"
)

// Viewing hours: one slot per hour in [10:00, 18:00) local time.
const (
	firstViewingHour = 10
	lastViewingHour  = 18
	futureSlotDays   = 30
)

// SlotService materializes viewing slots lazily: the first request for a
// (property, date) with no rows creates the day's hourly slots.
type SlotService struct {
	db *gorm.DB

	// generatePast also creates hours that have already begun. Off by
	// default; enabled via GENERATE_PAST_SLOTS for test environments.
	generatePast bool
}

func NewSlotService(db *gorm.DB, generatePast bool) *SlotService {
	return &SlotService{db: db, generatePast: generatePast}
}

// EnsureSlots returns the ordered slots for the date, generating them first
// if the day is untouched. Safe under concurrent first visits: the unique
// index on (property_id, start_time) makes the insert race lose cleanly,
// and the loser just re-reads the winner's rows.
func (s *SlotService) EnsureSlots(ctx context.Context, propertyID uint, date time.Time) ([]models.ViewingSlot, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	slots, err := s.slotsBetween(ctx, propertyID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if len(slots) > 0 {
		return slots, nil
	}

	fresh := buildDaySlots(propertyID, dayStart, s.generatePast, time.Now())
	if len(fresh) == 0 {
		return []models.ViewingSlot{}, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&fresh).Error
	})
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	// Re-read either way: on a duplicate-key loss this picks up the other
	// caller's rows, on success it returns ids in slot order.
	return s.slotsBetween(ctx, propertyID, dayStart, dayEnd)
}

// FutureSlots returns the next-30-day slot window without generating
// anything, matching the no-date property view.
func (s *SlotService) FutureSlots(ctx context.Context, propertyID uint) ([]models.ViewingSlot, error) {
	now := time.Now()
	return s.slotsBetween(ctx, propertyID, now, now.AddDate(0, 0, futureSlotDays))
}

func (s *SlotService) slotsBetween(ctx context.Context, propertyID uint, from, to time.Time) ([]models.ViewingSlot, error) {
	var slots []models.ViewingSlot
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND start_time >= ? AND start_time < ?", propertyID, from, to).
		Order("start_time ASC").
		Find(&slots).Error
	return slots, err
}

func buildDaySlots(propertyID uint, dayStart time.Time, includePast bool, now time.Time) []models.ViewingSlot {
	var slots []models.ViewingSlot
	for hour := firstViewingHour; hour < lastViewingHour; hour++ {
		start := dayStart.Add(time.Duration(hour) * time.Hour)
		if !includePast && start.Before(now) {
			continue
		}
		slots = append(slots, models.ViewingSlot{
			PropertyID:    propertyID,
			StartTime:     start,
			EndTime:       start.Add(time.Hour),
			Capacity:      1,
			ReservedCount: 0,
		})
	}
	return slots
}

// EphemeralSlot is the degraded-mode stand-in for a persisted slot: it keeps
// the booking page rendering while the store is down, but it cannot be
// reserved against (its id resolves to nothing). The Ephemeral flag lets
// callers and tests tell it apart from real rows.
type EphemeralSlot struct {
	ID            uint      `json:"id"`
	PropertyID    uint      `json:"property_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Capacity      int       `json:"capacity"`
	ReservedCount int       `json:"reserved_count"`
	Ephemeral     bool      `json:"ephemeral"`
}

// FallbackSlots synthesizes the day's hourly slots with ids derived
// deterministically from (property, hour), so repeated degraded responses
// stay consistent with each other.
func FallbackSlots(propertyID uint, date time.Time) []EphemeralSlot {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	slots := make([]EphemeralSlot, 0, lastViewingHour-firstViewingHour)
	for hour := firstViewingHour; hour < lastViewingHour; hour++ {
		start := dayStart.Add(time.Duration(hour) * time.Hour)
		slots = append(slots, EphemeralSlot{
			ID:            ephemeralSlotID(propertyID, start),
			PropertyID:    propertyID,
			StartTime:     start,
			EndTime:       start.Add(time.Hour),
			Capacity:      1,
			ReservedCount: 0,
			Ephemeral:     true,
		})
	}
	return slots
}

func ephemeralSlotID(propertyID uint, start time.Time) uint {
	h := fnv.New32a()
	h.Write([]byte(start.UTC().Format("2006-01-02T15")))
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(propertyID >> (8 * i))
	}
	h.Write(buf[:])
	return uint(h.Sum32())
}
