package db

import (
	"github.com/walkthru-dev/walkthru/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError maps driver duplicate-key failures onto
	// gorm.ErrDuplicatedKey, which conflict detection relies on when two
	// writers race past the pre-insert check.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.Organization{},
		&models.User{},
		&models.Property{},
		&models.Assignment{},
		&models.ChecklistSubmission{},
		&models.PushSubscription{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
