package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort               = "8085"
	defaultBackendMode        = BackendModeLocal
	defaultSettleWindow       = 200 * time.Millisecond
	defaultExpansionThreshold = 3
	defaultMaxDictionaryWords = 64
	defaultPluginID           = "migemosearch"
	defaultDictEncoding       = "cp932"
	defaultLogLevel           = "info"
)

const (
	BackendModeLocal  = "local"
	BackendModeRemote = "remote"
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	viperConfig.SetDefault("server.port", defaultPort)
	viperConfig.SetDefault("backend.mode", defaultBackendMode)
	viperConfig.SetDefault("query.settle_window", defaultSettleWindow)
	viperConfig.SetDefault("query.expansion_threshold", defaultExpansionThreshold)
	viperConfig.SetDefault("query.dispatch_timeout", time.Duration(0))
	viperConfig.SetDefault("expand.max_words", defaultMaxDictionaryWords)
	viperConfig.SetDefault("expand.dict_encoding", defaultDictEncoding)
	viperConfig.SetDefault("plugin.id", defaultPluginID)
	viperConfig.SetDefault("log.level", defaultLogLevel)

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

// Set overrides a config key for the lifetime of the process (flags use this).
func (c *Config) Set(key string, value any) {
	c.config.Set(key, value)
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

func (c *Config) GetKVDBPath() string {
	kvdbPath := c.config.GetString("KVDB_PATH")
	if len(kvdbPath) == 0 {
		kvdbPath = c.config.GetString("database.kvdb_path")
	}

	return kvdbPath
}

func (c *Config) GetIndexPath() string {
	indexPath := c.config.GetString("INDEX_PATH")
	if len(indexPath) == 0 {
		indexPath = c.config.GetString("database.index_path")
	}

	return indexPath
}

func (c *Config) GetStoragePath() string {
	storagePath := c.config.GetString("STORAGE_PATH")
	if len(storagePath) == 0 {
		storagePath = c.config.GetString("database.storage_path")
	}

	return storagePath
}

// GetBackendMode is either BackendModeLocal (in-process index) or BackendModeRemote (index daemon).
func (c *Config) GetBackendMode() string {
	mode := c.config.GetString("BACKEND_MODE")
	if len(mode) == 0 {
		mode = c.config.GetString("backend.mode")
	}

	return mode
}

func (c *Config) GetBackendURL() string {
	backendURL := c.config.GetString("BACKEND_URL")
	if len(backendURL) == 0 {
		backendURL = c.config.GetString("backend.url")
	}
	if len(backendURL) == 0 {
		backendURL = fmt.Sprintf("http://127.0.0.1:%s", c.GetPort())
	}

	return backendURL
}

func (c *Config) GetSettleWindow() time.Duration {
	return c.config.GetDuration("query.settle_window")
}

func (c *Config) GetExpansionThreshold() int {
	return c.config.GetInt("query.expansion_threshold")
}

// GetDispatchTimeout returns zero when backend calls are not bounded.
func (c *Config) GetDispatchTimeout() time.Duration {
	return c.config.GetDuration("query.dispatch_timeout")
}

func (c *Config) GetMaxDictionaryWords() int {
	return c.config.GetInt("expand.max_words")
}

func (c *Config) GetDictEncoding() string {
	return c.config.GetString("expand.dict_encoding")
}

func (c *Config) GetPluginID() string {
	return c.config.GetString("plugin.id")
}

// GetPluginDirectory is where the bundled MigemoSDK data lives.
func (c *Config) GetPluginDirectory() string {
	pluginDir := c.config.GetString("PLUGIN_DIR")
	if len(pluginDir) == 0 {
		pluginDir = c.config.GetString("plugin.directory")
	}

	return pluginDir
}

func (c *Config) GetLocale() string {
	locale := c.config.GetString("LOCALE")
	if len(locale) == 0 {
		locale = c.config.GetString("plugin.locale")
	}
	if len(locale) == 0 {
		locale = os.Getenv("LANG")
	}

	return locale
}

func (c *Config) GetLogLevel() string {
	level := c.config.GetString("LOG_LEVEL")
	if len(level) == 0 {
		level = c.config.GetString("log.level")
	}

	return level
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
