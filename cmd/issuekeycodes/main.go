// Command issuekeycodes is the scheduled key-issuance sweep. Cron invokes
// it shortly before each hour; it pre-issues key codes for confirmed
// reservations whose slot enters the access window within the configured
// margin, for visitors who have not opened the day-of page themselves.
//
// Exit code 0 means the run finished (individual reservation failures are
// logged and tolerated); non-zero means the run itself failed and the
// scheduler should alert.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yuhigori/mujinnaiken/config"
	"github.com/yuhigori/mujinnaiken/services"
	"github.com/yuhigori/mujinnaiken/storage"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "maximum run time for one sweep")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	window := services.KeyWindow{BeforeMin: cfg.KeyBeforeMin, AfterMin: cfg.KeyAfterMin}
	sweep := services.NewSweepService(db, services.NewKeyCodeService(db, services.NewNotificationService()), window)

	log.Println("Starting key code issuance job...")
	result, err := sweep.Run(ctx)
	if err != nil {
		log.Printf("key code issuance job failed: %v", err)
		os.Exit(1)
	}

	log.Printf("Key code issuance job completed: %d due, %d issued, %d failed",
		result.Examined, result.Issued, result.Failed)
}
