package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/yuhigori/mujinnaiken/models"
)

// WindowState classifies a moment relative to a slot's key-access window
// [start − before, end + after], both ends inclusive.
type WindowState int

const (
	WindowTooEarly WindowState = iota
	WindowOpen
	WindowTooLate
)

// KeyWindow is the configured access margin around a viewing slot.
type KeyWindow struct {
	BeforeMin int
	AfterMin  int
}

func (w KeyWindow) State(now, start, end time.Time) WindowState {
	opensAt := start.Add(-time.Duration(w.BeforeMin) * time.Minute)
	closesAt := end.Add(time.Duration(w.AfterMin) * time.Minute)
	switch {
	case now.Before(opensAt):
		return WindowTooEarly
	case now.After(closesAt):
		return WindowTooLate
	default:
		return WindowOpen
	}
}

// GenerateKeyCode returns a uniformly random zero-padded 4-digit string.
// It is a display code for the keybox, not a credential; collisions across
// reservations are fine.
func GenerateKeyCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return fmt.Sprintf("%04d", n.Int64())
}

// KeyCodeService issues key codes. Both the interactive key-code endpoint
// and the scheduled sweep go through Claim, so the issuance race between
// them is settled in exactly one place.
type KeyCodeService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewKeyCodeService(db *gorm.DB, notifier Notifier) *KeyCodeService {
	return &KeyCodeService{db: db, notifier: notifier}
}

// Claim returns the reservation's key code, issuing one if none exists yet.
// The issue is a conditional write (only while key_code is still NULL): when
// two callers race, one row update wins and the loser re-reads the winner's
// committed code. The issuance notification fires only for the winner.
func (s *KeyCodeService) Claim(ctx context.Context, reservationID uint) (code string, issuedAt time.Time, err error) {
	candidate := GenerateKeyCode()
	now := time.Now()

	res := s.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND key_code IS NULL", reservationID).
		Updates(map[string]any{
			"key_code":           candidate,
			"key_code_issued_at": now,
		})
	if res.Error != nil {
		return "", time.Time{}, res.Error
	}

	var reservation models.Reservation
	if err := s.db.WithContext(ctx).
		Preload("Property").
		Preload("Slot").
		First(&reservation, reservationID).Error; err != nil {
		return "", time.Time{}, err
	}

	if reservation.KeyCode == nil || reservation.KeyCodeIssuedAt == nil {
		return "", time.Time{}, errors.New("key code missing after claim")
	}

	if res.RowsAffected == 1 && s.notifier != nil {
		s.notifier.KeyCodeIssued(&reservation, *reservation.KeyCode)
	}

	return *reservation.KeyCode, *reservation.KeyCodeIssuedAt, nil
}
