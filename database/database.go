package database

import (
	"log"

	"github.com/ballnaha/p-post-sub003/config"
	"github.com/ballnaha/p-post-sub003/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Migrate แยกออกมาให้เทสเรียกกับ sqlite in-memory ได้
func Migrate(db *gorm.DB) error {
	// ----- AutoMigrate โครงสร้างทั้งหมดของเรา -----
	return db.AutoMigrate(
		&models.PositionCode{},
		&models.PersonnelSlot{},
		&models.SwapTransaction{},
		&models.MovementRecord{},
		&models.User{},
	)
}
