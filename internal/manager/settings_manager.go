package manager

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"x0x0/internal/models"
	"x0x0/internal/storage"
)

const settingsConfigKey = "application_settings"

// SettingsManager interface defines the contract for settings management
type SettingsManager interface {
	LoadSettings(ctx context.Context) (*models.ApplicationSettings, error)
	SaveSettings(ctx context.Context, settings *models.ApplicationSettings) error
	GetDefaultSettings() *models.ApplicationSettings
}

// SettingsManagerImpl implements the SettingsManager interface
type SettingsManagerImpl struct {
	store storage.Store
}

// NewSettingsManager creates a new settings manager
func NewSettingsManager(store storage.Store) *SettingsManagerImpl {
	return &SettingsManagerImpl{
		store: store,
	}
}

// LoadSettings loads application settings from the store
func (sm *SettingsManagerImpl) LoadSettings(ctx context.Context) (*models.ApplicationSettings, error) {
	settingsJSON, err := sm.store.GetConfig(ctx, settingsConfigKey)
	if err != nil {
		if stderrors.Is(err, storage.ErrKeyNotFound) {
			// Nothing saved yet; defaults apply until the user changes them
			return models.DefaultApplicationSettings(), nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := &models.ApplicationSettings{}
	if err := settings.FromJSON(settingsJSON); err != nil {
		return nil, fmt.Errorf("failed to parse stored settings: %w", err)
	}
	return settings, nil
}

// SaveSettings validates and persists application settings
func (sm *SettingsManagerImpl) SaveSettings(ctx context.Context, settings *models.ApplicationSettings) error {
	if settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	settings.LastUpdated = time.Now()
	settingsJSON, err := settings.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	if err := sm.store.SetConfig(ctx, settingsConfigKey, settingsJSON); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetDefaultSettings returns the default application settings
func (sm *SettingsManagerImpl) GetDefaultSettings() *models.ApplicationSettings {
	return models.DefaultApplicationSettings()
}
