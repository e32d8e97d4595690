package database

import (
	"fmt"
	"log"

	"inkwell/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var foreignKeys = []struct {
	name string
	ddl  string
}{
	{"fk_posts_category", "ALTER TABLE posts ADD CONSTRAINT fk_posts_category FOREIGN KEY (category_id) REFERENCES categories(id) ON UPDATE CASCADE ON DELETE RESTRICT"},
	{"fk_posts_status", "ALTER TABLE posts ADD CONSTRAINT fk_posts_status FOREIGN KEY (status_id) REFERENCES statuses(id) ON UPDATE CASCADE ON DELETE RESTRICT"},
}

// DefaultStatuses are seeded on every start. Posts with status 2 are public.
var DefaultStatuses = []models.Status{
	{ID: 1, Status: "draft"},
	{ID: models.PublishedStatusID, Status: "published"},
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Category{},
		&models.Status{},
		&models.Post{},
		&models.User{},
		&models.Identity{},
		&models.RevokedToken{},
		&models.Blob{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		for _, fk := range foreignKeys {
			if db.Migrator().HasConstraint(&models.Post{}, fk.name) {
				continue
			}
			if err := db.Exec(fk.ddl).Error; err != nil {
				return fmt.Errorf("add constraint %s: %w", fk.name, err)
			}
		}
	}

	statuses := append([]models.Status(nil), DefaultStatuses...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&statuses).Error; err != nil {
		return fmt.Errorf("seed statuses: %w", err)
	}

	log.Println("Database migrated successfully")
	return nil
}
