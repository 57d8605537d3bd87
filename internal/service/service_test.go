package service

import (
	"testing"

	"github.com/poselog/internal/config"
	"github.com/poselog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testLimits() config.ImageLimits {
	return config.ImageLimits{UserManaged: 3, System: 1}
}

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Asana{}, &db.AsanaImage{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedAsana(t *testing.T, gdb *gorm.DB, createdBy string, userManaged bool) *db.Asana {
	t.Helper()

	asana := db.Asana{Name: "Adho Mukha Svanasana", CreatedBy: createdBy, IsUserManaged: userManaged}
	if err := gdb.Create(&asana).Error; err != nil {
		t.Fatalf("failed to seed asana: %v", err)
	}
	return &asana
}

func seedImage(t *testing.T, gdb *gorm.DB, asanaID uint, owner string, order int) *db.AsanaImage {
	t.Helper()

	img := db.AsanaImage{
		OwnerIdentity: owner,
		AsanaID:       &asanaID,
		DisplayOrder:  order,
		URL:           "/static/uploads/test.jpg",
	}
	if err := gdb.Create(&img).Error; err != nil {
		t.Fatalf("failed to seed image: %v", err)
	}
	if err := gdb.Model(&db.Asana{}).Where("id = ?", asanaID).
		UpdateColumn("image_count", gorm.Expr("image_count + 1")).Error; err != nil {
		t.Fatalf("failed to bump image count: %v", err)
	}
	return &img
}
