package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

const (
	StudioDir    = ".studio"
	SettingsFile = "settings.yaml"
	EnvFile      = ".env"
)

// SettingsPath returns the location of the settings file inside dir
func SettingsPath(dir string) string {
	return filepath.Join(dir, StudioDir, SettingsFile)
}

// InitProjectStructure creates the .studio folder with default settings.
// An existing settings file is left as is.
func InitProjectStructure(dir string) error {
	studioPath := filepath.Join(dir, StudioDir)
	if err := os.MkdirAll(studioPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", studioPath, err)
	}

	if _, err := os.Stat(SettingsPath(dir)); err == nil {
		return nil
	}

	return WriteSettings(dir, models.DefaultSettings())
}

// ReadSettings loads settings from dir. Defaults apply when no settings file
// exists; values from .env and the process environment override the file.
func ReadSettings(dir string) (*models.Settings, error) {
	settings := models.DefaultSettings()

	content, err := os.ReadFile(SettingsPath(dir))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := LoadEnvFile(filepath.Join(dir, EnvFile)); err != nil {
		return nil, err
	}

	if err := env.Parse(settings); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return settings, nil
}

// WriteSettings stores settings under dir
func WriteSettings(dir string, settings *models.Settings) error {
	content, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	path := SettingsPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for settings: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}

	return nil
}

// LoadEnvFile loads variables from an optional .env file. Variables already
// present in the environment win.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
