package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvAPIKey overrides the configured Google Maps API key.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvAPIKey = "NEARBY_GOOGLE_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyGoogleAPIKey      = "google.api_key"
	KeyGoogleBaseURL     = "google.base_url"
	KeyGoogleTimeout     = "google.timeout_seconds"
	KeyGoogleRPS         = "google.requests_per_second"
	KeyGoogleBurst       = "google.burst"
	KeySearchOrigin      = "search.origin"
	KeySearchRadius      = "search.radius_miles"
	KeySearchKeywords    = "search.keywords"
	KeySearchBatchSize   = "search.batch_size"
	KeySearchTokenDelay  = "search.page_token_delay_ms"
	KeySearchMaxPages    = "search.max_pages"
	KeySearchConcurrent  = "search.concurrent_keywords"
	KeySearchKeywordFail = "search.keyword_failure"
	KeyHistoryEnabled    = "history.enabled"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindStringSlice
)

var settingKinds = map[string]keyKind{
	KeyGoogleAPIKey:      kindString,
	KeyGoogleBaseURL:     kindString,
	KeyGoogleTimeout:     kindInt,
	KeyGoogleRPS:         kindFloat,
	KeyGoogleBurst:       kindInt,
	KeySearchOrigin:      kindString,
	KeySearchRadius:      kindFloat,
	KeySearchKeywords:    kindStringSlice,
	KeySearchBatchSize:   kindInt,
	KeySearchTokenDelay:  kindInt,
	KeySearchMaxPages:    kindInt,
	KeySearchConcurrent:  kindBool,
	KeySearchKeywordFail: kindString,
	KeyHistoryEnabled:    kindBool,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			Origin:             s.getString(KeySearchOrigin, defaults.Search.Origin),
			RadiusMiles:        s.getPositiveFloat(KeySearchRadius, defaults.Search.RadiusMiles),
			Keywords:           s.getStringSlice(KeySearchKeywords, defaults.Search.Keywords),
			BatchSize:          s.getInt(KeySearchBatchSize, defaults.Search.BatchSize),
			PageTokenDelay:     s.getMillis(KeySearchTokenDelay, defaults.Search.PageTokenDelay),
			MaxPages:           s.getInt(KeySearchMaxPages, defaults.Search.MaxPages),
			ConcurrentKeywords: s.getBool(KeySearchConcurrent, defaults.Search.ConcurrentKeywords),
			KeywordFailure:     s.getKeywordFailure(defaults.Search.KeywordFailure),
		},
		Google: domain.GoogleSettings{
			APIKey:            s.configStore.GetString(KeyGoogleAPIKey),
			BaseURL:           s.getString(KeyGoogleBaseURL, defaults.Google.BaseURL),
			Timeout:           time.Duration(s.getInt(KeyGoogleTimeout, int(defaults.Google.Timeout/time.Second))) * time.Second,
			RequestsPerSecond: s.getPositiveFloat(KeyGoogleRPS, defaults.Google.RequestsPerSecond),
			Burst:             s.getInt(KeyGoogleBurst, defaults.Google.Burst),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(KeyHistoryEnabled, defaults.History.Enabled),
		},
	}

	if key := strings.TrimSpace(s.getenv(EnvAPIKey)); key != "" {
		settings.Google.APIKey = key
	}

	return settings, nil
}

// Save persists application settings.
// The API key is only written when set, so an environment override is
// never copied into the config file by accident.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeySearchOrigin, settings.Search.Origin},
		{KeySearchRadius, settings.Search.RadiusMiles},
		{KeySearchKeywords, settings.Search.Keywords},
		{KeySearchBatchSize, settings.Search.BatchSize},
		{KeySearchTokenDelay, int(settings.Search.PageTokenDelay / time.Millisecond)},
		{KeySearchMaxPages, settings.Search.MaxPages},
		{KeySearchConcurrent, settings.Search.ConcurrentKeywords},
		{KeySearchKeywordFail, settings.Search.KeywordFailure.String()},
		{KeyGoogleBaseURL, settings.Google.BaseURL},
		{KeyGoogleTimeout, int(settings.Google.Timeout / time.Second)},
		{KeyGoogleRPS, settings.Google.RequestsPerSecond},
		{KeyGoogleBurst, settings.Google.Burst},
		{KeyHistoryEnabled, settings.History.Enabled},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Google.APIKey != "" && settings.Google.APIKey != s.getenv(EnvAPIKey) {
		if err := s.configStore.Set(KeyGoogleAPIKey, settings.Google.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyGoogleAPIKey, err)
		}
	}

	return nil
}

// Set parses value according to key's type and stores it.
// Keywords are given comma-separated.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(key, kind, strings.TrimSpace(value))
	if err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetAPIKey stores the Google Maps API key.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key must not be empty", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(KeyGoogleAPIKey, apiKey); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys returns the settable config keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseSetting(key string, kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || !domain.ValidRadius(f) {
			return nil, fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	case kindStringSlice:
		var items []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: %s needs at least one value", domain.ErrInvalidInput, key)
		}
		return items, nil
	default:
		if key == KeySearchKeywordFail && !domain.KeywordFailurePolicy(value).IsValid() {
			return nil, fmt.Errorf("%w: %s must be %q or %q", domain.ErrInvalidInput, key,
				domain.KeywordFailureAbort, domain.KeywordFailureContinue)
		}
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getPositiveFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if !domain.ValidRadius(val) {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

// getMillis reads a millisecond count. An explicit zero disables the wait.
func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	ms := s.configStore.GetInt(key)
	if ms < 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *SettingsService) getKeywordFailure(defaultVal domain.KeywordFailurePolicy) domain.KeywordFailurePolicy {
	val := s.configStore.GetString(KeySearchKeywordFail)
	if val == "" {
		return defaultVal
	}
	policy := domain.KeywordFailurePolicy(val)
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}
