package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	BackendURL      string        `mapstructure:"backend_url"`
	SupabaseURL     string        `mapstructure:"supabase_url"`
	SupabaseKey     string        `mapstructure:"supabase_key"`
	ExplorePageSize int           `mapstructure:"explore_page_size"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	LogLevel        string        `mapstructure:"log_level"` // debug, info, warn, error
}

// ValidKeys are the keys accepted by `pathweiz config set`
var ValidKeys = []string{"backend_url", "supabase_url", "supabase_key", "explore_page_size", "request_timeout", "log_level"}

var (
	AppConfig *Config

	v          *viper.Viper
	configPath string
)

// Initialize loads or creates the configuration file under ~/.pathweiz
func Initialize() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return InitializeAt(dir)
}

// InitializeAt loads or creates config.yaml inside dir
func InitializeAt(dir string) error {
	configFile := filepath.Join(dir, "config.yaml")

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	v = viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("backend_url", "http://127.0.0.1:5000")
	v.SetDefault("supabase_url", "")
	v.SetDefault("supabase_key", "")
	v.SetDefault("explore_page_size", 10)
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("log_level", "info")

	// Environment overrides; the VITE_* names are kept so an existing
	// frontend .env can be sourced as-is.
	v.SetEnvPrefix("PATHWEIZ")
	v.AutomaticEnv()
	_ = v.BindEnv("backend_url", "PATHWEIZ_BACKEND_URL", "VITE_BACKEND_URL")
	_ = v.BindEnv("supabase_url", "PATHWEIZ_SUPABASE_URL", "VITE_SUPABASE_URL")
	_ = v.BindEnv("supabase_key", "PATHWEIZ_SUPABASE_KEY", "VITE_SUPABASE_KEY")

	// Read config
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal into struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.ExplorePageSize <= 0 {
		cfg.ExplorePageSize = 10
	}

	AppConfig = cfg
	configPath = configFile
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# Pathweiz Configuration
# Recommendation backend
backend_url: http://127.0.0.1:5000

# Supabase project (auth + milestone updates)
supabase_url: ""
supabase_key: ""

explore_page_size: 10
request_timeout: 30s

# debug, info, warn, error
log_level: info
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Set updates a configuration value
func Set(key, value string) error {
	if v == nil {
		return fmt.Errorf("config not initialized")
	}
	v.Set(key, value)
	return v.WriteConfig()
}

// Get retrieves a configuration value
func Get(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// IsValidKey reports whether key may be set through the CLI
func IsValidKey(key string) bool {
	for _, k := range ValidKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Dir returns the pathweiz home directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pathweiz"), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPath != "" {
		return configPath
	}
	dir, _ := Dir()
	return filepath.Join(dir, "config.yaml")
}
