// Package seeders populates a fresh database with a default admin and a
// handful of sample products.
package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/repositories"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

// Run seeds the default admin (SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD)
// and sample products. Existing records are left alone.
func Run(ctx context.Context) error {
	accounts := repositories.NewAccountRepository()
	products := repositories.NewProductRepository()
	auth := services.NewAuthService(accounts)

	username := config.Get("SEED_ADMIN_USERNAME", "admin")
	password := config.Get("SEED_ADMIN_PASSWORD", "admin123")

	_, err := auth.Register(ctx, rbac.RoleAdmin, services.RegisterInput{
		Username: username,
		Password: password,
	})
	switch {
	case err == nil:
		logger.Info("seeded admin account", "username", username)
	case errors.Is(err, models.ErrConflict):
		logger.Info("admin account already present", "username", username)
	default:
		return err
	}

	samples := []models.Product{
		{Name: "Steel Bolt M8", Price: 2.50, Stock: 500, Size: "M8", Color: "silver"},
		{Name: "Hex Nut M8", Price: 1.20, Stock: 800, Size: "M8", Color: "silver"},
		{Name: "Wood Screw 40mm", Price: 0.80, Stock: 1200, Size: "40mm"},
		{Name: "Claw Hammer", Price: 14.90, Stock: 35},
		{Name: "Insulation Tape", Price: 3.10, Stock: 240, Color: "black"},
	}

	listed, _, err := products.List(ctx, 1, 1, "")
	if err != nil {
		return err
	}
	if len(listed) > 0 {
		logger.Info("products already present, skipping sample seed")
		return nil
	}

	for i := range samples {
		if err := products.Create(ctx, &samples[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded sample products", "count", len(samples))
	return nil
}
