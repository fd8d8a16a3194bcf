package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"

	"github.com/yuhigori/mujinnaiken/config"
	"github.com/yuhigori/mujinnaiken/routes"
	"github.com/yuhigori/mujinnaiken/services"
	"github.com/yuhigori/mujinnaiken/storage"
	"github.com/yuhigori/mujinnaiken/utils"
)

func main() {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DB_CONNECTION_STRING environment variable is required")
	}

	db, err := storage.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to db: %v", err)
	}
	defer storage.Close(db)

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("error running migrations: %v", err)
	}

	rdb := storage.NewRedis(cfg.RedisURL)
	cache := storage.NewPropertyCache(rdb)
	notifier := services.NewNotificationService()
	window := services.KeyWindow{BeforeMin: cfg.KeyBeforeMin, AfterMin: cfg.KeyAfterMin}

	properties := &routes.PropertyHandler{
		DB:    db,
		Slots: services.NewSlotService(db, cfg.GeneratePastSlots),
		Cache: cache,
	}
	reservations := &routes.ReservationHandler{
		DB:               db,
		Notifier:         notifier,
		AllowOverbooking: cfg.AllowOverbooking,
	}
	keyCodes := &routes.KeyCodeHandler{
		DB:       db,
		KeyCodes: services.NewKeyCodeService(db, notifier),
		Window:   window,
	}
	admin := &routes.AdminHandler{DB: db}

	if cfg.AllowOverbooking {
		log.Println("⚠️  ALLOW_OVERBOOKING is enabled; the capacity guard is off")
	}

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

		adminParty := api.Party("/admin", utils.BasicAuth(cfg.AdminUser, cfg.AdminPass))
		{
			adminParty.Get("/reservations", admin.ListReservations)
			adminParty.Get("/properties", admin.ListProperties)
			adminParty.Get("/dashboard", admin.Dashboard)
		}
	}

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
