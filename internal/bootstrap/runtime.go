// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fittlyfans/internal/cache"
	"fittlyfans/internal/config"
	"fittlyfans/internal/database"
	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
	"fittlyfans/internal/observability"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Migrate forces AutoMigrate even in production.
	Migrate bool
	// SkipRedis leaves the redis client nil, e.g. for one-shot commands.
	SkipRedis bool
}

// Runtime holds the shared connections built once per process.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Close releases the pool and the redis client.
func (r *Runtime) Close() {
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// ConfigureLogging points every logger at the configured level and format.
func ConfigureLogging(cfg *config.Config) {
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)
	observability.SetLogger(middleware.Logger)
}

// InitRuntime connects to the database and Redis and ensures the admin account.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{
		Migrate: opts.Migrate || !cfg.IsProduction(),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rt := &Runtime{DB: db}
	if !opts.SkipRedis {
		// nil when unreachable; callers degrade without it
		rt.Redis = cache.Connect(cfg.RedisURL)
	}

	if err := EnsureAdmin(ctx, cfg, db); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	return rt, nil
}

// EnsureAdmin creates the configured admin account, or promotes an existing
// account with that email. It does nothing unless both ADMIN_EMAIL and
// ADMIN_PASSWORD are set.
func EnsureAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}
	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = "FittlyFans Admin"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		findErr := tx.Where("email = ?", email).Take(&user).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			user = models.User{
				Name:     name,
				Email:    email,
				Password: string(hashed),
				Role:     models.RoleAdmin,
			}
			return tx.Create(&user).Error
		case findErr != nil:
			return findErr
		case user.Role == models.RoleAdmin:
			return nil
		}

		// Admins cannot hold a profile, so promotion drops any existing one.
		if err := tx.Where("id = ?", user.ID).Delete(&models.Subscriber{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", user.ID).Delete(&models.Trainer{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("role", models.RoleAdmin).Error
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("admin account ensured", slog.String("email", email))
	return nil
}
