package services

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yuhigori/mujinnaiken/models"
)

// SweepResult summarizes one run of the pre-issuance job.
type SweepResult struct {
	Examined int
	Issued   int
	Failed   int
}

// Claimer issues or returns a reservation's key code. *KeyCodeService is
// the production implementation.
type Claimer interface {
	Claim(ctx context.Context, reservationID uint) (string, time.Time, error)
}

// SweepService pre-issues key codes for confirmed reservations whose slot
// starts within the next BeforeMin minutes, so a visitor who never opened
// the day-of page still gets their code notification.
type SweepService struct {
	db       *gorm.DB
	keyCodes Claimer
	window   KeyWindow
}

func NewSweepService(db *gorm.DB, keyCodes Claimer, window KeyWindow) *SweepService {
	return &SweepService{db: db, keyCodes: keyCodes, window: window}
}

// Run issues codes for every due reservation. A single reservation failing
// is logged and skipped; only the selection query itself is a hard error.
// Issuance goes through KeyCodeService.Claim, so a visitor opening the
// key-code page mid-run cannot cause a second code.
func (s *SweepService) Run(ctx context.Context) (SweepResult, error) {
	now := time.Now()
	targetTime := now.Add(time.Duration(s.window.BeforeMin) * time.Minute)

	var due []models.Reservation
	err := s.db.WithContext(ctx).
		Select("reservations.*").
		Joins("JOIN viewing_slots ON viewing_slots.id = reservations.slot_id").
		Where("reservations.status = ? AND reservations.key_code IS NULL", models.ReservationStatusConfirmed).
		Where("viewing_slots.start_time BETWEEN ? AND ?", now, targetTime).
		Find(&due).Error
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Examined: len(due)}
	for _, reservation := range due {
		code, _, err := s.keyCodes.Claim(ctx, reservation.ID)
		if err != nil {
			result.Failed++
			log.Printf("sweep: issuing key code for reservation #%d failed: %v", reservation.ID, err)
			continue
		}
		result.Issued++
		log.Printf("sweep: issued key code %s for reservation #%d (%s)", code, reservation.ID, reservation.Name)
	}
	return result, nil
}
