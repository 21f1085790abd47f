package database

import (
	"fmt"
	"log"

	"taskfyer/internal/domain/tasks"
	"taskfyer/internal/domain/tokens"
	"taskfyer/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(dsn string) *gorm.DB {
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
	return db
}

// Migrate creates or updates every table the API owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&tokens.Token{},
		&tasks.Task{},
	)
}
