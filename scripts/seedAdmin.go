package scripts

import (
	"log"

	"trainhub/config"
	"trainhub/database"
	"trainhub/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the bootstrap admin account if none exists.
// Run once after the first migration.
func SeedAdmin(email, name, password string) error {
	db := database.Database.Db

	var existing models.User
	err := db.Where("email = ? AND is_deleted = ?", email, false).First(&existing).Error
	if err == nil {
		log.Printf("[SEED] Admin %s already exists, skipping", email)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     "ADMIN",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("[SEED] Created admin account %s", email)
	return nil
}
