package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/models"
)

// SettingsRepository manages the single application settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Create(ctx context.Context, settings *models.Settings) error
	Update(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository constructs a repository backed by GORM.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	if err := r.db.WithContext(ctx).First(&settings).Error; err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (r *settingsRepository) Create(ctx context.Context, settings *models.Settings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *settingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
