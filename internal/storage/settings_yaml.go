package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

// Settings are the app-level preferences, distinct from the scoreboard
// config: they name the config file and tune the runtime, and they survive
// restarts in the user config dir.
type Settings struct {
	ConfigPath          string
	TickInterval        time.Duration
	GamepadPollInterval time.Duration
	ReloadDebounce      time.Duration
	Fullscreen          bool
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		TickInterval:        50 * time.Millisecond,
		GamepadPollInterval: 8 * time.Millisecond,
		ReloadDebounce:      200 * time.Millisecond,
	}
}

type yamlSettings struct {
	ConfigPath           string `yaml:"config_path"`
	TickMillis           int    `yaml:"tick_millis"`
	GamepadPollMillis    int    `yaml:"gamepad_poll_millis"`
	ReloadDebounceMillis int    `yaml:"reload_debounce_millis"`
	Fullscreen           bool   `yaml:"fullscreen"`
}

// LoadSettings reads app preferences from YAML.
// If the settings file does not exist, default settings are returned.
func LoadSettings(appName string) (Settings, error) {
	settings := DefaultSettings()
	configPath, err := resolveSettingsPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes app preferences to YAML.
func SaveSettings(appName string, settings Settings) error {
	configPath, err := resolveSettingsPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		ConfigPath:           settings.ConfigPath,
		TickMillis:           int(settings.TickInterval / time.Millisecond),
		GamepadPollMillis:    int(settings.GamepadPollInterval / time.Millisecond),
		ReloadDebounceMillis: int(settings.ReloadDebounce / time.Millisecond),
		Fullscreen:           settings.Fullscreen,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveSettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	settings.ConfigPath = fileData.ConfigPath
	if fileData.TickMillis > 0 {
		settings.TickInterval = time.Duration(fileData.TickMillis) * time.Millisecond
	}
	if fileData.GamepadPollMillis > 0 {
		settings.GamepadPollInterval = time.Duration(fileData.GamepadPollMillis) * time.Millisecond
	}
	if fileData.ReloadDebounceMillis > 0 {
		settings.ReloadDebounce = time.Duration(fileData.ReloadDebounceMillis) * time.Millisecond
	}
	settings.Fullscreen = fileData.Fullscreen
}
