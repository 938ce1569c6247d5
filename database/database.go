package database

import (
	"log"
	"meetly/config"
	"meetly/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes the database connection. Postgres is the production
// driver; sqlite is selectable for local development.
func ConnectDb() {
	var dialector gorm.Dialector
	switch config.AppConfig.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(config.AppConfig.DBName)
	default:
		dialector = postgres.Open(config.AppConfig.PostgresDSN())
	}

	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the booking repo relies on.
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	RunMigrations(db)

	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations, including the partial unique
// index that backs the atomic slot claim.
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.AvailabilityPattern{},
		&models.Booking{},
		&models.OAuthConnection{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Uniqueness guard for non-cancelled bookings on the same slot. Partial
	// indexes work on both postgres and sqlite.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_slot_claim
		ON bookings (pattern_id, booking_start_time)
		WHERE status <> 'CANCELLED' AND pattern_id IS NOT NULL AND deleted_at IS NULL`).Error; err != nil {
		log.Fatalf("Slot claim index failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
