package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yuhigori/mujinnaiken/models"
	"github.com/yuhigori/mujinnaiken/services"
	"github.com/yuhigori/mujinnaiken/storage"
	"github.com/yuhigori/mujinnaiken/utils"
)

const (
	testAdminUser = "admin"
	testAdminPass = "password"
)

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []uint
	issued    []string
}

func (n *recordingNotifier) ReservationConfirmed(r *models.Reservation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, r.ID)
}

func (n *recordingNotifier) KeyCodeIssued(r *models.Reservation, code string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.issued = append(n.issued, code)
}

type testEnv struct {
	app      *iris.Application
	db       *gorm.DB
	notifier *recordingNotifier
}

type testOptions struct {
	window           services.KeyWindow
	allowOverbooking bool
	cache            *storage.PropertyCache
}

// newTestEnv builds the same route tree as main against an in-memory store.
func newTestEnv(t *testing.T, opts testOptions) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	if opts.window == (services.KeyWindow{}) {
		opts.window = services.KeyWindow{BeforeMin: 30, AfterMin: 30}
	}

	notifier := &recordingNotifier{}

	properties := &PropertyHandler{
		DB:    db,
		Slots: services.NewSlotService(db, false),
		Cache: opts.cache,
	}
	reservations := &ReservationHandler{
		DB:               db,
		Notifier:         notifier,
		AllowOverbooking: opts.allowOverbooking,
	}
	keyCodes := &KeyCodeHandler{
		DB:       db,
		KeyCodes: services.NewKeyCodeService(db, notifier),
		Window:   opts.window,
	}
	admin := &AdminHandler{DB: db}

	app := iris.New()
	app.Validator = validator.New()

	api := app.Party("/api")
	{
		api.Get("/properties/{id}", properties.Get)
		api.Post("/reservations", reservations.Create)
		api.Get("/reservations/{id}", reservations.Get)
		api.Get("/reservations/{id}/key-code", keyCodes.Get)
		api.Post("/reservations/{id}/key-return", keyCodes.Return)
		api.Post("/reservations/{id}/survey", keyCodes.Survey)

		adminParty := api.Party("/admin", utils.BasicAuth(testAdminUser, testAdminPass))
		{
			adminParty.Get("/reservations", admin.ListReservations)
			adminParty.Get("/properties", admin.ListProperties)
			adminParty.Get("/dashboard", admin.Dashboard)
		}
	}

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}

	return &testEnv{app: app, db: db, notifier: notifier}
}

func (e *testEnv) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	e.app.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
}

func createTestProperty(t *testing.T, db *gorm.DB) *models.Property {
	t.Helper()
	property := models.Property{
		Name:    "サンプルマンション A棟 203号室",
		Address: "東京都渋谷区神南1-1-1",
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}
	return &property
}

func createTestSlot(t *testing.T, db *gorm.DB, propertyID uint, start time.Time, capacity int) *models.ViewingSlot {
	t.Helper()
	slot := models.ViewingSlot{
		PropertyID: propertyID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Capacity:   capacity,
	}
	if err := db.Create(&slot).Error; err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return &slot
}

func createTestReservation(t *testing.T, db *gorm.DB, slot *models.ViewingSlot, token string) *models.Reservation {
	t.Helper()
	reservation := models.Reservation{
		PropertyID: slot.PropertyID,
		SlotID:     slot.ID,
		Name:       "山田太郎",
		Email:      "taro@example.com",
		Phone:      "090-0000-0000",
		Token:      token,
		Status:     models.ReservationStatusConfirmed,
	}
	if err := db.Create(&reservation).Error; err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return &reservation
}
