package db

import (
	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
	"github.com/nvaghela/dukaan-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.KYCSubmission{},
		&model.KYCDocument{},
		&model.VerificationDecision{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedAdminAccount()
}

// seedAdminAccount creates the default review administrator if no admin exists.
func seedAdminAccount() error {
	var count int64
	if err := DB.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Admin account already exists, skipping seed", map[string]interface{}{
			"admin_count": count,
		})
		return nil
	}

	hash, err := util.HashPassword("admin1234")
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        "admin@dukaan.local",
		PasswordHash: hash,
		Name:         "KYC Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	if err := DB.Create(admin).Error; err != nil {
		logger.Error("Failed to seed admin account", err)
		return err
	}

	logger.Info("Admin account seeded", map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}
