package db

import (
	"github.com/statusdeck/statusdeck/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}

// Migrate applies the schema on the given handle. Tests use it against an
// in-memory database.
func Migrate(gdb *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.Component{},
		&models.Incident{},
		&models.IncidentComponent{},
		&models.IncidentTimeline{},
		&models.Maintenance{},
		&models.MaintenanceComponent{},
		&models.MaintenanceTimeline{},
		&models.Subscriber{},
		&models.Notification{},
	}

	migrator := gdb.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := gdb.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
