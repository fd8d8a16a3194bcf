// Command seed wipes the store and loads the demo fixture: one property,
// its keybox, and 30 days of hourly viewing slots.
package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yuhigori/mujinnaiken/config"
	"github.com/yuhigori/mujinnaiken/models"
	"github.com/yuhigori/mujinnaiken/storage"
)

func main() {
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
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

	// Clear existing data, children first.
	for _, model := range []any{
		&models.Reservation{},
		&models.ViewingSlot{},
		&models.KeyBox{},
		&models.Property{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			log.Fatalf("error clearing table: %v", err)
		}
	}

	property := models.Property{
		Name:        "サンプルマンション A棟 203号室",
		Address:     "東京都渋谷区神南1-1-1",
		Description: "駅から徒歩5分、南向きで日当たり良好な1LDKです。オートロック完備。",
		ImageURL:    "https://placehold.co/600x400?text=Property+Image",
	}
	if err := db.Create(&property).Error; err != nil {
		log.Fatalf("error creating property: %v", err)
	}
	log.Printf("Created property: %s", property.Name)

	keyBox := models.KeyBox{
		PropertyID: property.ID,
		Location:   "ドアノブ",
		// Physical box combination, not the per-visit key code.
		Passcode: "0000",
	}
	if err := db.Create(&keyBox).Error; err != nil {
		log.Fatalf("error creating key box: %v", err)
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	var slots []models.ViewingSlot
	for day := 0; day < 30; day++ {
		date := dayStart.AddDate(0, 0, day)
		for hour := 10; hour < 18; hour++ {
			start := date.Add(time.Duration(hour) * time.Hour)
			slots = append(slots, models.ViewingSlot{
				PropertyID:    property.ID,
				StartTime:     start,
				EndTime:       start.Add(time.Hour),
				Capacity:      1,
				ReservedCount: 0,
			})
		}
	}
	if err := db.CreateInBatches(&slots, 100).Error; err != nil {
		log.Fatalf("error creating viewing slots: %v", err)
	}
	log.Printf("Created %d viewing slots", len(slots))
}
