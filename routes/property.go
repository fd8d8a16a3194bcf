package routes

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/yuhigori/mujinnaiken/models"
	"github.com/yuhigori/mujinnaiken/services"
	"github.com/yuhigori/mujinnaiken/storage"
	"github.com/yuhigori/mujinnaiken/utils"
)

type PropertyHandler struct {
	DB    *gorm.DB
	Slots *services.SlotService
	Cache *storage.PropertyCache
}

// Get returns a property with its viewing slots. With ?date=YYYY-MM-DD the
// day's slots are generated lazily on first visit; without it the response
// carries the next-30-day window. When the store is unreachable the booking
// funnel stays alive on the cached property and ephemeral fallback slots,
// tagged degraded so nothing downstream mistakes them for real rows.
func (h *PropertyHandler) Get(ctx iris.Context) {
	idParam := ctx.Params().Get("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid property ID")
		return
	}
	propertyID := uint(id)

	var date time.Time
	hasDate := false
	if dateParam := ctx.URLParam("date"); dateParam != "" {
		date, err = time.ParseInLocation("2006-01-02", dateParam, time.Local)
		if err != nil {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		hasDate = true
	}

	reqCtx := ctx.Request().Context()

	if !storage.Available(reqCtx, h.DB) {
		h.degraded(ctx, propertyID, date, hasDate)
		return
	}

	var property models.Property
	if err := h.DB.WithContext(reqCtx).First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "property_not_found", "property not found")
			return
		}
		log.Printf("property %d lookup failed: %v", propertyID, err)
		h.degraded(ctx, propertyID, date, hasDate)
		return
	}
	h.Cache.Put(reqCtx, &property)

	var slots []models.ViewingSlot
	if hasDate {
		slots, err = h.Slots.EnsureSlots(reqCtx, propertyID, date)
	} else {
		slots, err = h.Slots.FutureSlots(reqCtx, propertyID)
	}
	if err != nil {
		log.Printf("slots for property %d failed: %v", propertyID, err)
		h.degraded(ctx, propertyID, date, hasDate)
		return
	}

	ctx.JSON(iris.Map{
		"property": property,
		"slots":    slots,
	})
}

// degraded serves the last cached copy of the property (or a placeholder)
// with non-persisted slot descriptors. These slots cannot be reserved; the
// create endpoint will 404 on their ids.
func (h *PropertyHandler) degraded(ctx iris.Context, propertyID uint, date time.Time, hasDate bool) {
	property, cached := h.Cache.Get(ctx.Request().Context(), propertyID)
	if !cached {
		property = &models.Property{
			ID:   propertyID,
			Name: "物件情報を取得できません",
		}
	}

	if !hasDate {
		date = time.Now()
	}

	ctx.JSON(iris.Map{
		"property": property,
		"slots":    services.FallbackSlots(propertyID, date),
		"degraded": true,
	})
}
