package routes

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/yuhigori/mujinnaiken/models"
	"github.com/yuhigori/mujinnaiken/services"
	"github.com/yuhigori/mujinnaiken/utils"
)

var errSlotFull = errors.New("viewing slot is full")

type ReservationInput struct {
	SlotID        uint   `json:"slot_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	StaffRequired bool   `json:"staff_required"`
}

type ReservationHandler struct {
	DB       *gorm.DB
	Notifier services.Notifier

	// AllowOverbooking drops the capacity guard. Named test switch,
	// default off; see config.
	AllowOverbooking bool
}

// Create books a slot. The reservation insert and the capacity increment
// commit in one transaction; the increment is conditional on
// reserved_count < capacity so the database, not this handler, decides the
// last admissible booking when requests race.
func (h *ReservationHandler) Create(ctx iris.Context) {
	var input ReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var slot models.ViewingSlot
	if err := h.DB.First(&slot, input.SlotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "slot_not_found", "viewing slot not found")
			return
		}
		log.Printf("reservation create: slot lookup failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	reservation := models.Reservation{
		PropertyID:    slot.PropertyID,
		SlotID:        slot.ID,
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		Token:         utils.GenerateReservationToken(),
		Status:        models.ReservationStatusConfirmed,
		StaffRequired: input.StaffRequired,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		increment := tx.Model(&models.ViewingSlot{}).
			Where("id = ?", slot.ID)
		if !h.AllowOverbooking {
			increment = increment.Where("reserved_count < capacity")
		}
		res := increment.UpdateColumn("reserved_count", gorm.Expr("reserved_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errSlotFull
		}
		return tx.Create(&reservation).Error
	})
	if err != nil {
		if errors.Is(err, errSlotFull) {
			utils.JSONError(ctx, http.StatusConflict, "slot_full", "viewing slot is fully booked")
			return
		}
		log.Printf("reservation create failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	// Best-effort confirmation; the booking stands even if this never
	// reaches the guest.
	if h.Notifier != nil {
		reservation.Slot = &slot
		var property models.Property
		if err := h.DB.First(&property, slot.PropertyID).Error; err == nil {
			reservation.Property = &property
		}
		h.Notifier.ReservationConfirmed(&reservation)
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{
		"success": true,
		"reservation": iris.Map{
			"id":    reservation.ID,
			"token": reservation.Token,
		},
	})
}

// Get returns the reservation joined with its property and slot, but only
// when id and token jointly resolve. A wrong token and a nonexistent id are
// indistinguishable on purpose: both 404, so enumeration of ids leaks
// nothing about token validity.
func (h *ReservationHandler) Get(ctx iris.Context) {
	reservation, ok := lookupReservation(ctx, h.DB, "Property", "Slot")
	if !ok {
		return
	}
	ctx.JSON(iris.Map{"reservation": reservation})
}

// lookupReservation resolves {id} + token (query param or body field already
// extracted by the caller into the token query parameter) into the guest's
// reservation, writing the 400/401/404 response itself when that fails.
func lookupReservation(ctx iris.Context, db *gorm.DB, preloads ...string) (*models.Reservation, bool) {
	return lookupReservationWithToken(ctx, db, ctx.URLParam("token"), preloads...)
}

func lookupReservationWithToken(ctx iris.Context, db *gorm.DB, token string, preloads ...string) (*models.Reservation, bool) {
	id, err := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid reservation ID")
		return nil, false
	}

	if token == "" {
		utils.JSONError(ctx, http.StatusUnauthorized, "token_required", "token is required")
		return nil, false
	}

	q := db
	for _, preload := range preloads {
		q = q.Preload(preload)
	}

	var reservation models.Reservation
	if err := q.Where("id = ? AND token = ?", uint(id), token).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateNotFound(ctx)
			return nil, false
		}
		log.Printf("reservation lookup failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	return &reservation, true
}
