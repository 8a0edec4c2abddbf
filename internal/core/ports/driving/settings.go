package driving

import "github.com/custodia-labs/nearby-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its config key, parsing value
	// to the key's type.
	Set(key, value string) error

	// SetAPIKey stores the Google Maps API key.
	SetAPIKey(apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Keys returns the settable config keys.
	Keys() []string
}
