package utils

import (
	"fmt"

	"lectoria/backend/config"
	"lectoria/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the Postgres connection and migrates the schema.
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey, which the progression engine relies on.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := MigrateDB(db); err != nil {
		return nil, err
	}

	return db, nil
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Institution{},
		&models.ReadingTest{},
		&models.TestResult{},
		&models.TestPrerequisite{},
		&models.UnlockedTest{},
		&models.Badge{},
		&models.BadgeCondition{},
		&models.UserBadge{},
		&models.Game{},
		&models.GameAssignment{},
	)
}
