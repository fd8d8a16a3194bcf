package routes

import (
	"log"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/yuhigori/mujinnaiken/models"
	"github.com/yuhigori/mujinnaiken/utils"
)

// AdminHandler is the staff-facing read surface, guarded by Basic auth in
// the router. Property data entry itself lives outside this service.
type AdminHandler struct {
	DB *gorm.DB
}

// ListReservations returns every reservation, newest first, joined with
// property and slot.
func (h *AdminHandler) ListReservations(ctx iris.Context) {
	var reservations []models.Reservation
	if err := h.DB.Preload("Property").Preload("Slot").
		Order("created_at DESC").
		Find(&reservations).Error; err != nil {
		log.Printf("admin reservations list failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"data": reservations})
}

type adminPropertySummary struct {
	models.Property
	SlotCount        int64 `json:"slot_count"`
	ReservationCount int64 `json:"reservation_count"`
}

// ListProperties returns all properties with their slot and reservation
// counts.
func (h *AdminHandler) ListProperties(ctx iris.Context) {
	var properties []models.Property
	if err := h.DB.Order("id ASC").Find(&properties).Error; err != nil {
		log.Printf("admin properties list failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	summaries := make([]adminPropertySummary, 0, len(properties))
	for _, property := range properties {
		summary := adminPropertySummary{Property: property}
		h.DB.Model(&models.ViewingSlot{}).Where("property_id = ?", property.ID).Count(&summary.SlotCount)
		h.DB.Model(&models.Reservation{}).Where("property_id = ?", property.ID).Count(&summary.ReservationCount)
		summaries = append(summaries, summary)
	}
	ctx.JSON(iris.Map{"data": summaries})
}

// startOfDay is midnight in the timestamp's own zone. The staff UI counts
// "today" against the server's wall clock, not UTC.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Dashboard returns the operational totals: properties, reservations today
// and overall, and keys currently out (code issued, not yet returned).
func (h *AdminHandler) Dashboard(ctx iris.Context) {
	var (
		propertyCount     int64
		reservationCount  int64
		reservationsToday int64
		outstandingKeys   int64
	)

	h.DB.Model(&models.Property{}).Count(&propertyCount)
	h.DB.Model(&models.Reservation{}).Count(&reservationCount)

	dayStart := startOfDay(time.Now())
	h.DB.Model(&models.Reservation{}).
		Where("created_at >= ?", dayStart).
		Count(&reservationsToday)
	h.DB.Model(&models.Reservation{}).
		Where("key_code IS NOT NULL AND key_returned_at IS NULL").
		Count(&outstandingKeys)

	ctx.JSON(iris.Map{
		"properties":         propertyCount,
		"reservations":       reservationCount,
		"reservations_today": reservationsToday,
		"outstanding_keys":   outstandingKeys,
	})
}
