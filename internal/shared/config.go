package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Platform    PlatformConfig    `toml:"platform"`
	Credentials CredentialsConfig `toml:"credentials"`
	Translator  TranslatorConfig  `toml:"translator"`
	Database    DatabaseConfig    `toml:"database"`
	Import      ImportConfig      `toml:"import"`
}

// PlatformConfig locates the recipe platform and its login endpoints.
type PlatformConfig struct {
	BaseURL   string `toml:"base_url"`
	EntryURL  string `toml:"entry_url"`
	LoginURL  string `toml:"login_url"`
	Locale    string `toml:"locale"`
	UploadURL string `toml:"upload_url"`
}

// CredentialsConfig contains the platform account used for imports.
//
// Values can be overridden by the COOKIDOO_USERNAME and COOKIDOO_PASSWORD
// environment variables so the file never has to hold real secrets.
type CredentialsConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// TranslatorConfig configures the Gemini-backed recipe translator.
//
// APIKey can be overridden by the GEMINI_API_KEY environment variable.
type TranslatorConfig struct {
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ImportConfig tunes bulk import behavior.
type ImportConfig struct {
	RateLimit float64 `toml:"rate_limit"`
	OutputDir string  `toml:"output_dir"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Resolve overlays environment variables on secrets that should not live in
// the config file, then fills defaults for anything still blank.
func (c *Config) Resolve() {
	c.Credentials.Username = EnvOr("COOKIDOO_USERNAME", c.Credentials.Username)
	c.Credentials.Password = EnvOr("COOKIDOO_PASSWORD", c.Credentials.Password)
	c.Translator.APIKey = EnvOr("GEMINI_API_KEY", c.Translator.APIKey)

	defaults := DefaultConfig()
	if c.Platform.BaseURL == "" {
		c.Platform = defaults.Platform
	}
	if c.Database.Path == "" {
		c.Database = defaults.Database
	}
	if c.Translator.Model == "" {
		c.Translator.Model = defaults.Translator.Model
	}
	if c.Import.RateLimit <= 0 {
		c.Import.RateLimit = defaults.Import.RateLimit
	}
}
