package routes

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yuhigori/mujinnaiken/models"
	"github.com/yuhigori/mujinnaiken/services"
	"github.com/yuhigori/mujinnaiken/utils"
)

// KeyCodeHandler covers the day-of-visit flow: viewing the keybox code,
// reporting key return, and leaving the survey.
type KeyCodeHandler struct {
	DB       *gorm.DB
	KeyCodes *services.KeyCodeService
	Window   services.KeyWindow
}

// Get returns the reservation's key code, issuing it on first view. Both
// outside-window cases (too early, too late) produce the same 403 with the
// configured margins in the message; the caller cannot tell which side of
// the window it is on.
func (h *KeyCodeHandler) Get(ctx iris.Context) {
	reservation, ok := lookupReservation(ctx, h.DB, "Slot")
	if !ok {
		return
	}
	if reservation.Slot == nil {
		utils.JSONError(ctx, http.StatusNotFound, "slot_not_found", "viewing slot not found")
		return
	}

	state := h.Window.State(time.Now(), reservation.Slot.StartTime, reservation.Slot.EndTime)
	if state != services.WindowOpen {
		utils.JSONError(ctx, http.StatusForbidden, "key_code_not_available",
			fmt.Sprintf("キーコードは内見開始の%d分前から内見終了の%d分後まで表示可能です",
				h.Window.BeforeMin, h.Window.AfterMin))
		return
	}

	if reservation.KeyCode != nil {
		ctx.JSON(iris.Map{
			"key_code":  *reservation.KeyCode,
			"issued_at": reservation.KeyCodeIssuedAt,
		})
		return
	}

	code, issuedAt, err := h.KeyCodes.Claim(ctx.Request().Context(), reservation.ID)
	if err != nil {
		log.Printf("key code claim for reservation #%d failed: %v", reservation.ID, err)
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{
		"key_code":  code,
		"issued_at": issuedAt,
	})
}

type keyReturnInput struct {
	Token string `json:"token"`
}

// Return records the key-return event exactly once. A second report is an
// error, not a silent success: a duplicate means the guest flow replayed
// something, and that should surface.
func (h *KeyCodeHandler) Return(ctx iris.Context) {
	var input keyReturnInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reservation, ok := lookupReservationWithToken(ctx, h.DB, input.Token)
	if !ok {
		return
	}

	if reservation.KeyReturnedAt != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "already_returned", "鍵は既に返却済みです")
		return
	}

	now := time.Now()
	res := h.DB.Model(&models.Reservation{}).
		Where("id = ? AND key_returned_at IS NULL", reservation.ID).
		Update("key_returned_at", now)
	if res.Error != nil {
		log.Printf("key return for reservation #%d failed: %v", reservation.ID, res.Error)
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		// Lost a race with another return report.
		utils.JSONError(ctx, http.StatusBadRequest, "already_returned", "鍵は既に返却済みです")
		return
	}

	ctx.JSON(iris.Map{
		"success":         true,
		"key_returned_at": now,
	})
}

type surveyInput struct {
	Token  string          `json:"token"`
	Survey json.RawMessage `json:"survey"`
}

// emptySurvey reports whether the payload carries no feedback at all:
// absent, JSON null, the empty string, or another falsy scalar.
func emptySurvey(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", `""`, "0", "false":
		return true
	}
	return false
}

// Survey attaches feedback to the reservation. Repeatable by design, and
// deliberately independent of the key-return state.
func (h *KeyCodeHandler) Survey(ctx iris.Context) {
	var input surveyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Token == "" {
		utils.JSONError(ctx, http.StatusUnauthorized, "token_required", "token is required")
		return
	}
	if emptySurvey(input.Survey) {
		utils.JSONError(ctx, http.StatusBadRequest, "survey_required", "survey data is required")
		return
	}

	reservation, ok := lookupReservationWithToken(ctx, h.DB, input.Token)
	if !ok {
		return
	}

	if err := h.DB.Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).
		Update("survey", datatypes.JSON(input.Survey)).Error; err != nil {
		log.Printf("survey save for reservation #%d failed: %v", reservation.ID, err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"survey":  json.RawMessage(input.Survey),
	})
}
