package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yuhigori/mujinnaiken/models"
	"github.com/yuhigori/mujinnaiken/storage"
	"github.com/yuhigori/mujinnaiken/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, storage.Migrate(db))
	return db
}

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

func seedReservation(t *testing.T, db *gorm.DB, start, end time.Time) *models.Reservation {
	t.Helper()

	property := models.Property{Name: "テスト物件", Address: "東京都"}
	require.NoError(t, db.Create(&property).Error)

	slot := models.ViewingSlot{
		PropertyID: property.ID,
		StartTime:  start,
		EndTime:    end,
		Capacity:   1,
	}
	require.NoError(t, db.Create(&slot).Error)

	reservation := models.Reservation{
		PropertyID: property.ID,
		SlotID:     slot.ID,
		Name:       "山田太郎",
		Email:      "taro@example.com",
		Phone:      "090-0000-0000",
		Token:      utils.GenerateReservationToken(),
		Status:     models.ReservationStatusConfirmed,
	}
	require.NoError(t, db.Create(&reservation).Error)
	return &reservation
}

func TestKeyWindowState(t *testing.T) {
	window := KeyWindow{BeforeMin: 30, AfterMin: 30}
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	cases := []struct {
		name string
		now  time.Time
		want WindowState
	}{
		{"well before", start.Add(-2 * time.Hour), WindowTooEarly},
		{"one minute before window", start.Add(-31 * time.Minute), WindowTooEarly},
		{"window opens", start.Add(-30 * time.Minute), WindowOpen},
		{"during viewing", start.Add(30 * time.Minute), WindowOpen},
		{"window closes", end.Add(30 * time.Minute), WindowOpen},
		{"one minute after window", end.Add(31 * time.Minute), WindowTooLate},
		{"next day", end.Add(24 * time.Hour), WindowTooLate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, window.State(tc.now, start, end))
		})
	}
}

func TestGenerateKeyCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateKeyCode()
		require.Len(t, code, 4)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 10000)
	}
}

func TestClaimIssuesAtMostOnce(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewKeyCodeService(db, notifier)

	now := time.Now()
	reservation := seedReservation(t, db, now.Add(10*time.Minute), now.Add(70*time.Minute))

	first, firstIssuedAt, err := svc.Claim(context.Background(), reservation.ID)
	require.NoError(t, err)
	require.Len(t, first, 4)

	second, secondIssuedAt, err := svc.Claim(context.Background(), reservation.ID)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, firstIssuedAt.Unix(), secondIssuedAt.Unix())

	// Only the winning claim notifies.
	require.Equal(t, []string{first}, notifier.issued)
}

func TestClaimConcurrentWinnersAgree(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewKeyCodeService(db, notifier)

	now := time.Now()
	reservation := seedReservation(t, db, now.Add(10*time.Minute), now.Add(70*time.Minute))

	const callers = 8
	codes := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _, errs[i] = svc.Claim(context.Background(), reservation.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
	}
	for i := 1; i < callers; i++ {
		require.Equal(t, codes[0], codes[i], "all claimants must observe the same code")
	}
	require.Len(t, notifier.issued, 1, "exactly one claim wins the write")
}
