package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	API    APIConfig    `json:"api"`
	Member MemberConfig `json:"member"`
	Gym    GymConfig    `json:"gym"`
}

// APIConfig holds the club backend connection settings
type APIConfig struct {
	BaseURL  string `json:"base_url"`
	ClientID string `json:"client_id"`
}

// MemberConfig holds the member's login credentials
type MemberConfig struct {
	DNI      string `json:"dni"`
	Password string `json:"password"`
}

// GymConfig holds gym display and workout preferences
type GymConfig struct {
	WeightUnit      string `json:"weight_unit"`       // "kg" or "lb"
	DefaultRestSecs int    `json:"default_rest_secs"` // used when a planned set has no rest
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:  "https://api.clubvillamitre.com",
			ClientID: "socios-app",
		},
		Gym: GymConfig{
			WeightUnit:      "kg",
			DefaultRestSecs: 90,
		},
	}
}

// Load reads the configuration from ~/.villamitre/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.ClientID == "" {
		cfg.API.ClientID = defaults.API.ClientID
	}
	if cfg.Gym.WeightUnit == "" {
		cfg.Gym.WeightUnit = defaults.Gym.WeightUnit
	}
	if cfg.Gym.DefaultRestSecs == 0 {
		cfg.Gym.DefaultRestSecs = defaults.Gym.DefaultRestSecs
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.villamitre/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Member = MemberConfig{
		DNI:      "YOUR_DNI",
		Password: "YOUR_PASSWORD",
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Member.DNI == "" || c.Member.DNI == "YOUR_DNI" {
		return errors.New("member.dni is required - use the DNI registered with the club")
	}
	if c.Member.Password == "" || c.Member.Password == "YOUR_PASSWORD" {
		return errors.New("member.password is required")
	}

	if c.Gym.WeightUnit != "" && c.Gym.WeightUnit != "kg" && c.Gym.WeightUnit != "lb" {
		return fmt.Errorf("gym.weight_unit must be \"kg\" or \"lb\", got %q", c.Gym.WeightUnit)
	}
	if c.Gym.DefaultRestSecs < 0 {
		return fmt.Errorf("gym.default_rest_secs must not be negative, got %d", c.Gym.DefaultRestSecs)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".villamitre", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".villamitre"), nil
}
