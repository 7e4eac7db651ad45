package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hanbit-dev/authportal-backend/internal/config"
	"github.com/hanbit-dev/authportal-backend/internal/models"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.OtpChallenge{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
