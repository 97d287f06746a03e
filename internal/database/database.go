package database

import (
	"os"
	"path/filepath"

	"taskboard-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite database at path and runs migrations. The
// parent directory is created when missing. glebarez/sqlite is a pure Go
// driver, so no CGO is required.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskHistory{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// SeedIfEmpty inserts a small sample team when the user table is empty, so
// a fresh install has assignees to work with.
func SeedIfEmpty(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sample := []models.User{
		{Name: "Alice Johnson", Email: "alice@example.com", Role: models.RoleDeveloper},
		{Name: "Bob Smith", Email: "bob@example.com", Role: models.RoleDesigner},
		{Name: "Carol Lee", Email: "carol@example.com", Role: models.RoleQA},
		{Name: "Dave Kim", Email: "dave@example.com", Role: models.RoleManager},
	}
	return db.Create(&sample).Error
}
