package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/models"
	"github.com/inkwell/inkwell/pkg/config"
	"github.com/inkwell/inkwell/pkg/logging"
)

// PasswordHasher turns a plaintext password into a stored hash
type PasswordHasher func(password string) (string, error)

// Initialize prepares the database before the first request is served:
// it ensures the schema and, when configured, an administrator account.
// It is safe to run on every start.
func Initialize(ctx context.Context, database *DB, bootstrap config.BootstrapConfig, hash PasswordHasher) error {
	logger := logging.WithComponent("db-init")

	if err := database.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("Schema ready")

	if bootstrap.AdminUsername == "" {
		return nil
	}

	users := NewUserRepository(NewRepository(database.DB))
	existing, err := users.GetByUsername(ctx, bootstrap.AdminUsername)
	if err != nil {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}
	if existing != nil {
		if !existing.IsAdmin {
			if err := users.SetAdmin(ctx, existing.ID, true); err != nil {
				return fmt.Errorf("failed to promote bootstrap admin: %w", err)
			}
			logger.Info("Promoted bootstrap admin", zap.String("username", existing.Username))
		}
		return nil
	}

	passwordHash, err := hash(bootstrap.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}
	admin := &models.User{
		Username:     bootstrap.AdminUsername,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	logger.Info("Created bootstrap admin", zap.String("username", admin.Username))
	return nil
}
