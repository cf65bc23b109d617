package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

const (
	defaultAppName      = "Admin Panel"
	defaultSupportEmail = "support@example.com"
)

// SettingsService reads and updates the application settings singleton.
type SettingsService interface {
	Get(ctx context.Context) (dto.SettingsResponse, error)
	Update(ctx context.Context, actor Actor, req dto.UpdateSettingsRequest) (dto.SettingsResponse, error)
}

type settingsService struct {
	repo     repository.SettingsRepository
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(repo repository.SettingsRepository, activity ActivityRecorder, logger zerolog.Logger) SettingsService {
	return &settingsService{
		repo:     repo,
		activity: activity,
		logger:   logger.With().Str("component", "settings_service").Logger(),
	}
}

// Get returns the settings row, creating it with defaults on first read.
func (s *settingsService) Get(ctx context.Context) (dto.SettingsResponse, error) {
	settings, err := s.ensure(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}
	return dto.NewSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, actor Actor, req dto.UpdateSettingsRequest) (dto.SettingsResponse, error) {
	settings, err := s.ensure(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	if req.AppName != nil {
		settings.AppName = *req.AppName
	}
	if req.SupportEmail != nil {
		settings.SupportEmail = *req.SupportEmail
	}

	if err := s.repo.Update(ctx, &settings); err != nil {
		return dto.SettingsResponse{}, fmt.Errorf("update settings: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionUpdate,
		Module:      "settings",
		Description: "updated application settings",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return dto.NewSettingsResponse(settings), nil
}

func (s *settingsService) ensure(ctx context.Context) (models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings = models.Settings{
		AppName:      defaultAppName,
		SupportEmail: defaultSupportEmail,
	}
	if err := s.repo.Create(ctx, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("create settings: %w", err)
	}
	s.logger.Info().Msg("created default settings")
	return settings, nil
}
