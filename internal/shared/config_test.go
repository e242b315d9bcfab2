package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./cookiedoo.db" {
			t.Errorf("expected database path ./cookiedoo.db, got %s", config.Database.Path)
		}

		if config.Platform.BaseURL != "https://cookidoo.nl" {
			t.Errorf("expected platform base URL https://cookidoo.nl, got %s", config.Platform.BaseURL)
		}

		if config.Platform.Locale != "nl-NL" {
			t.Errorf("expected locale nl-NL, got %s", config.Platform.Locale)
		}

		if config.Translator.Model != "gemini-2.5-flash" {
			t.Errorf("expected translator model gemini-2.5-flash, got %s", config.Translator.Model)
		}

		if config.Import.RateLimit != 0.5 {
			t.Errorf("expected import rate limit 0.5, got %v", config.Import.RateLimit)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[platform]
base_url = "https://cookidoo.de"
entry_url = "https://cookidoo.de/profile/de-DE/login"
login_url = "https://login.cookidoo.de/login-srv/login"
locale = "de-DE"
upload_url = "https://api.cloudinary.com"

[credentials]
username = "chef@example.com"
password = "hunter2"

[translator]
model = "gemini-1.5-pro"
api_key = "test_key"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[import]
rate_limit = 2.0
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Platform.Locale != "de-DE" {
			t.Errorf("expected locale de-DE, got %s", config.Platform.Locale)
		}

		if config.Credentials.Username != "chef@example.com" {
			t.Errorf("expected username chef@example.com, got %s", config.Credentials.Username)
		}

		if config.Import.RateLimit != 2.0 {
			t.Errorf("expected rate limit 2.0, got %v", config.Import.RateLimit)
		}
	})

	t.Run("Resolve", func(t *testing.T) {
		t.Setenv("COOKIDOO_USERNAME", "env@example.com")
		t.Setenv("COOKIDOO_PASSWORD", "env-secret")
		t.Setenv("GEMINI_API_KEY", "env-gemini")

		config := &Config{}
		config.Credentials.Username = "file@example.com"
		config.Resolve()

		if config.Credentials.Username != "env@example.com" {
			t.Errorf("environment should override file credentials, got %s", config.Credentials.Username)
		}
		if config.Credentials.Password != "env-secret" {
			t.Errorf("expected password from environment, got %s", config.Credentials.Password)
		}
		if config.Translator.APIKey != "env-gemini" {
			t.Errorf("expected api key from environment, got %s", config.Translator.APIKey)
		}
		if config.Platform.BaseURL == "" {
			t.Error("Resolve should fill platform defaults")
		}
		if config.Import.RateLimit <= 0 {
			t.Error("Resolve should fill a positive rate limit")
		}
	})
}
