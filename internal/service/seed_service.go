package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

// SeedService bootstraps the default accounts so a fresh deployment has a
// login to start from. Seeding is idempotent: existing emails are skipped.
type SeedService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewSeedService constructs the account seeder.
func NewSeedService(users repository.UserRepository, logger zerolog.Logger) *SeedService {
	return &SeedService{
		users:  users,
		logger: logger.With().Str("component", "seed_service").Logger(),
	}
}

type seedAccount struct {
	name     string
	email    string
	password string
	role     string
}

var seedAccounts = []seedAccount{
	{name: "Super Administrator", email: "superadmin@admin.com", password: "SuperAdmin@123", role: models.RoleSuperAdmin},
	{name: "Administrator", email: "admin@admin.com", password: "Admin@123", role: models.RoleAdmin},
	{name: "Regular User", email: "user@example.com", password: "User@123", role: models.RoleUser},
}

// Run creates any of the default accounts that do not exist yet.
func (s *SeedService) Run(ctx context.Context) error {
	for _, account := range seedAccounts {
		if _, err := s.users.GetByEmail(ctx, account.email); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check seed account %s: %w", account.email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		user := models.User{
			Name:     account.name,
			Email:    account.email,
			Password: string(hash),
			Role:     account.role,
			Status:   models.StatusActive,
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return fmt.Errorf("create seed account %s: %w", account.email, err)
		}
		s.logger.Info().Str("email", account.email).Str("role", account.role).Msg("seeded account")
	}
	return nil
}
