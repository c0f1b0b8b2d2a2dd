package reputation

import (
	"errors"
	"testing"
	"time"

	"gamefinder/backend/internal/database"
	"gamefinder/backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, nick string) {
	t.Helper()
	if err := db.Create(&models.User{Nickname: nick, PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", nick, err)
	}
}

func loadUser(t *testing.T, db *gorm.DB, nick string) models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, "nickname = ?", nick).Error; err != nil {
		t.Fatalf("Failed to load user %s: %v", nick, err)
	}
	return user
}

func TestRateComputesExactAverage(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 5, 3*time.Minute, 24*time.Hour)
	createUser(t, db, "target")
	createUser(t, db, "rater1")
	createUser(t, db, "rater2")

	if err := ledger.Rate("rater1", "target", 8); err != nil {
		t.Fatalf("First rating failed: %v", err)
	}
	if err := ledger.Rate("rater2", "target", 6); err != nil {
		t.Fatalf("Second rating failed: %v", err)
	}

	target := loadUser(t, db, "target")
	if target.RatingCount != 2 {
		t.Errorf("Expected rating count 2, got %d", target.RatingCount)
	}
	if target.TotalRating != 14 {
		t.Errorf("Expected total rating 14, got %v", target.TotalRating)
	}
	if target.ReputationScore != 7 {
		t.Errorf("Expected reputation score 7, got %v", target.ReputationScore)
	}
}

func TestRateRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 5, 3*time.Minute, 24*time.Hour)
	createUser(t, db, "target")
	createUser(t, db, "rater")

	if err := ledger.Rate("rater", "target", 9); err != nil {
		t.Fatalf("First rating failed: %v", err)
	}
	if err := ledger.Rate("rater", "target", 2); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("Expected ErrAlreadyRated, got %v", err)
	}

	target := loadUser(t, db, "target")
	if target.RatingCount != 1 {
		t.Errorf("Duplicate rating changed the count: %d", target.RatingCount)
	}
	if target.ReputationScore != 9 {
		t.Errorf("Duplicate rating changed the score: %v", target.ReputationScore)
	}
}

func TestRateRejectsOutOfRangeScore(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 5, 3*time.Minute, 24*time.Hour)

	if err := ledger.Rate("rater", "target", 0); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("Expected ErrInvalidScore for 0, got %v", err)
	}
	if err := ledger.Rate("rater", "target", 11); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("Expected ErrInvalidScore for 11, got %v", err)
	}
}

func TestRateUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 5, 3*time.Minute, 24*time.Hour)

	if err := ledger.Rate("rater", "ghost", 5); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("Expected ErrUnknownUser, got %v", err)
	}
}

func TestReportThresholdIssuesBanAndResetsCount(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 3, 3*time.Minute, 24*time.Hour)
	createUser(t, db, "target")

	startedAt := time.Now().Add(-10 * time.Minute)
	for _, reporter := range []string{"r1", "r2", "r3"} {
		createUser(t, db, reporter)
		if err := ledger.Report(reporter, "target", startedAt); err != nil {
			t.Fatalf("Report from %s failed: %v", reporter, err)
		}
	}

	target := loadUser(t, db, "target")
	if target.ReportCount != 0 {
		t.Errorf("Expected report count reset to 0, got %d", target.ReportCount)
	}
	if target.BannedUntil == nil {
		t.Fatal("Expected a ban to be issued")
	}
	remaining := time.Until(*target.BannedUntil)
	if remaining < 23*time.Hour || remaining > 24*time.Hour {
		t.Errorf("Expected ~24h ban, got %v", remaining)
	}

	banned, msg, err := ledger.CheckBan("target")
	if err != nil {
		t.Fatalf("CheckBan failed: %v", err)
	}
	if !banned {
		t.Error("Expected CheckBan to report banned")
	}
	if msg == "" {
		t.Error("Expected a remaining-time message")
	}
}

func TestReportAfterBanStartsNewCycle(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 3, 0, 24*time.Hour)
	createUser(t, db, "target")

	startedAt := time.Now().Add(-10 * time.Minute)
	for _, reporter := range []string{"r1", "r2", "r3"} {
		createUser(t, db, reporter)
		if err := ledger.Report(reporter, "target", startedAt); err != nil {
			t.Fatalf("Report from %s failed: %v", reporter, err)
		}
	}

	createUser(t, db, "r4")
	if err := ledger.Report("r4", "target", startedAt); err != nil {
		t.Fatalf("Post-ban report failed: %v", err)
	}

	target := loadUser(t, db, "target")
	if target.ReportCount != 1 {
		t.Errorf("Expected the post-ban report to start at 1, got %d", target.ReportCount)
	}
}

func TestReportRejectsDuplicateReporter(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 5, 0, 24*time.Hour)
	createUser(t, db, "target")
	createUser(t, db, "reporter")

	startedAt := time.Now().Add(-10 * time.Minute)
	if err := ledger.Report("reporter", "target", startedAt); err != nil {
		t.Fatalf("First report failed: %v", err)
	}
	if err := ledger.Report("reporter", "target", startedAt); !errors.Is(err, ErrAlreadyReported) {
		t.Errorf("Expected ErrAlreadyReported, got %v", err)
	}

	target := loadUser(t, db, "target")
	if target.ReportCount != 1 {
		t.Errorf("Duplicate report changed the count: %d", target.ReportCount)
	}
}

func TestReportCooldown(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 5, 3*time.Minute, 24*time.Hour)
	createUser(t, db, "target")
	createUser(t, db, "reporter")

	err := ledger.Report("reporter", "target", time.Now())
	if !errors.Is(err, ErrCooldownActive) {
		t.Errorf("Expected ErrCooldownActive for a fresh match, got %v", err)
	}

	if err := ledger.Report("reporter", "target", time.Now().Add(-4*time.Minute)); err != nil {
		t.Errorf("Expected the report to pass after the cooldown, got %v", err)
	}
}

func TestCheckBanExpired(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 5, 0, 24*time.Hour)

	past := time.Now().Add(-time.Hour)
	if err := db.Create(&models.User{Nickname: "target", PasswordHash: "x", BannedUntil: &past}).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	banned, _, err := ledger.CheckBan("target")
	if err != nil {
		t.Fatalf("CheckBan failed: %v", err)
	}
	if banned {
		t.Error("An expired ban should not count as banned")
	}
}

func TestFormatRemaining(t *testing.T) {
	if got := FormatRemaining(23*time.Hour + 59*time.Minute); got != "23h 59m" {
		t.Errorf("Expected \"23h 59m\", got %q", got)
	}
	if got := FormatRemaining(12 * time.Minute); got != "12m" {
		t.Errorf("Expected \"12m\", got %q", got)
	}
	if got := FormatRemaining(-time.Minute); got != "0m" {
		t.Errorf("Expected \"0m\", got %q", got)
	}
}
