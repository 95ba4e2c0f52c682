package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Storage     StorageConfig     `toml:"storage"`
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Player      PlayerConfig      `toml:"player"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify OAuth application credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// StorageConfig selects and configures the credential store backend.
//
// Backend is either "gist" (GitHub Gist document) or "file" (local JSON file).
type StorageConfig struct {
	Backend      string `toml:"backend"`
	GistID       string `toml:"gist_id"`
	GistToken    string `toml:"gist_token"`
	GistFilename string `toml:"gist_filename"`
	Path         string `toml:"path"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AuthConfig contains token lifecycle settings.
type AuthConfig struct {
	MarginSeconds        int  `toml:"margin_seconds"`
	TimeoutSeconds       int  `toml:"timeout_seconds"`
	AutoRenew            bool `toml:"auto_renew"`
	RenewIntervalSeconds int  `toml:"renew_interval_seconds"`
}

// Margin returns the token expiry safety margin as a [time.Duration].
func (a AuthConfig) Margin() time.Duration {
	return time.Duration(a.MarginSeconds) * time.Second
}

// Timeout returns the token endpoint request timeout as a [time.Duration].
func (a AuthConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RenewInterval returns the background renewal tick interval as a [time.Duration].
func (a AuthConfig) RenewInterval() time.Duration {
	return time.Duration(a.RenewIntervalSeconds) * time.Second
}

// PlayerConfig contains outbound Spotify API client settings.
//
// RateLimit is requests per second, Burst the limiter bucket size.
type PlayerConfig struct {
	RateLimit      float64 `toml:"rate_limit"`
	Burst          int     `toml:"burst"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Timeout returns the playback API request timeout as a [time.Duration].
func (p PlayerConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, os.ErrExist)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
