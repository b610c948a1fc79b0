package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "cadence.db" {
			t.Errorf("expected database path cadence.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8888 {
			t.Errorf("expected server port 8888, got %d", config.Server.Port)
		}

		if config.Catalogs.Plex.URL != "http://localhost:32400" {
			t.Errorf("expected plex url http://localhost:32400, got %s", config.Catalogs.Plex.URL)
		}

		if config.Catalogs.Tidal.CountryCode != "US" {
			t.Errorf("expected tidal country code US, got %s", config.Catalogs.Tidal.CountryCode)
		}

		if config.Engine.Checkpoint != "cadence_job.json" {
			t.Errorf("expected checkpoint cadence_job.json, got %s", config.Engine.Checkpoint)
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

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[catalogs.plex]
url = "http://plex.local:32400"
token = "plex-token"
library = "Tunes"

[catalogs.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:8080/callback"

[catalogs.tidal]
personal_token = "tidal-token"
country_code = "DE"
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

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Catalogs.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Catalogs.Spotify.ClientID)
		}

		if config.Catalogs.Plex.Library != "Tunes" {
			t.Errorf("expected plex library Tunes, got %s", config.Catalogs.Plex.Library)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Catalogs.Tidal.PersonalToken = "saved-token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}

		if loaded.Catalogs.Tidal.PersonalToken != "saved-token" {
			t.Errorf("expected saved token to round-trip, got %q", loaded.Catalogs.Tidal.PersonalToken)
		}
	})

	t.Run("LoadConfigMissing", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
