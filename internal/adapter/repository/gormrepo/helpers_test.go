package gormrepo

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/notification"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/pkg/id"
)

// openTestDB creates an in-memory sqlite DB with the real schema. A single
// connection keeps every statement on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&profile.Profile{}, &certificate.Request{}, &notification.Notification{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func strp(s string) *string { return &s }

func seedProfile(t *testing.T, db *gorm.DB, p profile.Profile) profile.Profile {
	t.Helper()
	if p.ID == "" {
		p.ID = id.NewID32()
	}
	if p.Role == "" {
		p.Role = profile.RoleStudent
	}
	if err := NewProfileRepository(db).Create(context.Background(), &p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func seedRequest(t *testing.T, db *gorm.DB, owner string, status certificate.Status, reason string, createdAt time.Time) certificate.Request {
	t.Helper()
	r := certificate.Request{
		RequestID: id.NewID32(),
		OwnerID:   owner,
		Reason:    reason,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if status.Rejected() {
		r.RejectionReason = strp("Missing documents")
	}
	if err := NewCertificateRepository(db).Create(context.Background(), &r); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return r
}
