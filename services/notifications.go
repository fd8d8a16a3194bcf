package services

import (
	"log"

	"github.com/yuhigori/mujinnaiken/models"
)

// Notifier is the fire-and-forget notification sink. Delivery failure never
// affects the operation that triggered it.
type Notifier interface {
	ReservationConfirmed(reservation *models.Reservation)
	KeyCodeIssued(reservation *models.Reservation, keyCode string)
}

// NotificationService writes notifications to the console. Real delivery is
// out of scope for the MVP; the log lines carry everything a mail template
// would need.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (ns *NotificationService) ReservationConfirmed(reservation *models.Reservation) {
	log.Println("===== 予約完了メール =====")
	log.Printf("宛先: %s", reservation.Email)
	log.Printf("予約ID: %d", reservation.ID)
	if reservation.Property != nil {
		log.Printf("物件: %s", reservation.Property.Name)
	}
	if reservation.Slot != nil {
		log.Printf("内見日時: %s", reservation.Slot.StartTime.Format("2006-01-02 15:04"))
	}
	log.Printf("アクセストークン: %s", reservation.Token)
	log.Println("========================")
}

func (ns *NotificationService) KeyCodeIssued(reservation *models.Reservation, keyCode string) {
	log.Println("===== キーコード発行通知 =====")
	log.Printf("宛先: %s", reservation.Email)
	log.Printf("予約ID: %d", reservation.ID)
	log.Printf("キーコード: %s", keyCode)
	if reservation.Slot != nil {
		log.Printf("内見日時: %s", reservation.Slot.StartTime.Format("2006-01-02 15:04"))
	}
	log.Println("============================")
}
