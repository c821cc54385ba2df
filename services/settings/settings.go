package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/logger"
)

const DefaultMaxSearchCount = 100

type ContextMenu struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	// Argument may contain {path} and {dir} placeholders.
	Argument  string `json:"argument"`
	ImagePath string `json:"image_path"`
}

type Settings struct {
	ContextMenus            []ContextMenu `json:"context_menus"`
	MaxSearchCount          int           `json:"max_search_count"`
	UseLocationAsWorkingDir bool          `json:"use_location_as_working_dir"`
}

func Defaults() Settings {
	return Settings{
		ContextMenus:   []ContextMenu{},
		MaxSearchCount: DefaultMaxSearchCount,
	}
}

type Store interface {
	Get(bucket string, key string) (string, error)
	Set(bucket string, key string, value string) error
}

// Manager holds the process-wide settings document for one plugin id.
type Manager struct {
	logger   logger.Logger
	store    Store
	pluginID string

	mu      sync.RWMutex
	current Settings
}

func NewManager(logger logger.Logger, store Store, pluginID string) *Manager {
	return &Manager{
		logger:   logger,
		store:    store,
		pluginID: pluginID,
		current:  Defaults(),
	}
}

// Load replaces the in-memory settings with the stored document, or defaults if none.
func (m *Manager) Load() error {
	loaded := Defaults()

	value, err := m.store.Get(kvdb.SettingsBucket, m.pluginID)
	switch {
	case errors.Is(err, kvdb.ErrNotFound):
		m.logger.Info("no stored settings, using defaults", "plugin_id", m.pluginID)
	case err != nil:
		m.logger.Error("failed to load settings", "plugin_id", m.pluginID, "err", err.Error())
		return fmt.Errorf("failed to load settings: %w", err)
	default:
		if err := json.Unmarshal([]byte(value), &loaded); err != nil {
			m.logger.Error("failed to unmarshal settings", "plugin_id", m.pluginID, "err", err.Error())
			return fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}

	m.mu.Lock()
	m.current = loaded
	m.mu.Unlock()

	return nil
}

// Get returns a copy that callers may keep.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.current
	s.ContextMenus = slices.Clone(m.current.ContextMenus)
	return s
}

func (m *Manager) Update(fn func(s *Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(&m.current)
}

func (m *Manager) Save() error {
	data, err := json.Marshal(m.Get())
	if err != nil {
		m.logger.Error("failed to marshal settings", "plugin_id", m.pluginID, "err", err.Error())
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := m.store.Set(kvdb.SettingsBucket, m.pluginID, string(data)); err != nil {
		m.logger.Error("failed to save settings", "plugin_id", m.pluginID, "err", err.Error())
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
