package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/repository"
	"github.com/campusdesk/campusdesk-api/pkg/config"
	"github.com/campusdesk/campusdesk-api/pkg/database"
	"github.com/campusdesk/campusdesk-api/pkg/logger"
)

// Provisions the administrator account from SEED_ADMIN_* settings.
// Safe to run repeatedly: an existing account is left untouched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		sugar.Fatalw("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	users := repository.NewUserRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := users.FindByEmail(ctx, cfg.Seed.AdminEmail)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		sugar.Fatalw("failed to look up admin account", "error", err)
	}
	if existing != nil {
		sugar.Infow("admin account already exists", "email", existing.Email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		sugar.Fatalw("failed to hash admin password", "error", err)
	}

	admin := &models.User{
		Name:         cfg.Seed.AdminName,
		Email:        cfg.Seed.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		sugar.Fatalw("failed to create admin account", "error", err)
	}

	sugar.Infow("admin account created", "email", admin.Email, "id", admin.ID)
}
