package database

import (
	"errors"
	"fmt"
	"log"

	"quiz-ai-backend/internal/config"
	"quiz-ai-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	// TranslateError maps unique violations to gorm.ErrDuplicatedKey, which the
	// attempt allocator relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	log.Println("database connected")
	return db
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("database: close: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("database: close: %v", err)
	}
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.Submission{},
		&models.UserAnswer{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Println("database migrated")
	return nil
}

var defaultSubjects = []models.Subject{
	{Name: "Mathematics", Description: "Arithmetic, algebra, geometry and statistics"},
	{Name: "Science", Description: "Physics, chemistry and biology"},
	{Name: "English", Description: "Grammar, vocabulary and reading comprehension"},
	{Name: "History", Description: "World and national history"},
	{Name: "Geography", Description: "Physical and human geography"},
	{Name: "Computer Science", Description: "Programming and computing fundamentals"},
}

// SeedSubjects inserts the default subjects when the table is empty.
func SeedSubjects(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Subject{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	subjects := make([]models.Subject, len(defaultSubjects))
	copy(subjects, defaultSubjects)
	if err := db.Create(&subjects).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	log.Printf("database: seeded %d subjects", len(subjects))
	return nil
}
