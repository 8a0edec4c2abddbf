package file

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFileName is the name of the config file inside the config directory.
const ConfigFileName = "config.toml"

// DefaultConfigDir returns ~/.nearby.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nearby"), nil
}

// ConfigStore keeps config.toml as a tree of TOML tables. Keys use dot
// notation, so "search.radius_miles" is radius_miles in the [search] table.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	doc      map[string]any
}

// NewConfigStore opens configDir/config.toml, creating configDir if needed.
// An empty configDir means ~/.nearby. A missing file is an empty config.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, ConfigFileName),
		doc:      make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the leaf value at key. Tables are not values.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, leaf := s.walk(key, false)
	if table == nil {
		return nil, false
	}
	val, ok := table[leaf]
	if _, isTable := val.(map[string]any); isTable {
		return nil, false
	}
	return val, ok
}

// GetString returns the string at key, or "".
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt returns the integer at key, or 0. Whole floats such as
// "batch_size = 6.0" count as integers.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v)
		}
	}
	return 0
}

// GetFloat returns the number at key, or 0.
// "radius_miles = 5" and "radius_miles = 5.0" both read as 5.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// GetBool returns the boolean at key, or false.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetStringSlice returns the string array at key, or nil.
// A bare string is read as a one-element list, so
// `keywords = "apartment"` works as well as an array.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Set stores value at key and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("config key must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, leaf := s.walk(key, true)
	table[leaf] = value
	return s.write()
}

// Save writes the current config to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// Load replaces the in-memory config with the file contents.
func (s *ConfigStore) Load() error {
	raw, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.doc = make(map[string]any)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	doc := make(map[string]any)
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// walk returns the table holding the last segment of key and that segment.
// With create set, missing tables are made, and values in the way are
// replaced by tables. Without it, a nil table means key does not exist.
func (s *ConfigStore) walk(key string, create bool) (map[string]any, string) {
	parts := strings.Split(key, ".")
	table := s.doc
	for _, part := range parts[:len(parts)-1] {
		child, ok := table[part].(map[string]any)
		if !ok {
			if !create {
				return nil, ""
			}
			child = make(map[string]any)
			table[part] = child
		}
		table = child
	}
	return table, parts[len(parts)-1]
}

// write replaces the config file atomically. Caller holds the lock.
// The file holds the API key, so it is only readable by the owner.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(s.doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}
