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
	Catalogs CatalogsConfig `toml:"catalogs"`
	Engine   EngineConfig   `toml:"engine"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// CatalogsConfig contains per-catalog connection settings and credentials.
type CatalogsConfig struct {
	Plex    PlexConfig    `toml:"plex"`
	Spotify SpotifyConfig `toml:"spotify"`
	Tidal   TidalConfig   `toml:"tidal"`
}

// PlexConfig contains media server settings. Authentication is a long-lived
// personal token; no OAuth exchange is involved.
type PlexConfig struct {
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	Library string `toml:"library"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// TidalConfig contains TIDAL API credentials. Any one of personal_token,
// client_secret, or the redirect_uri (PKCE) path may be configured.
type TidalConfig struct {
	ClientID      string `toml:"client_id"`
	ClientSecret  string `toml:"client_secret"`
	PersonalToken string `toml:"personal_token"`
	RedirectURI   string `toml:"redirect_uri"`
	CountryCode   string `toml:"country_code"`
}

// EngineConfig contains reconciliation engine settings.
type EngineConfig struct {
	Checkpoint string `toml:"checkpoint"` // output path for the job document
}

// AuthConfig contains session manager settings.
type AuthConfig struct {
	TokenCache string `toml:"token_cache"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
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

// SaveConfig writes the configuration to a TOML file at the specified path.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
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
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
