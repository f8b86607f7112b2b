package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

func TestReadSettings_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	settings, err := ReadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestInitProjectStructure_WritesDefaultsOnce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitProjectStructure(dir))

	custom := models.DefaultSettings()
	custom.Service.BaseURL = "http://studio.test"
	require.NoError(t, WriteSettings(dir, custom))

	// A second init must not clobber the edited file
	require.NoError(t, InitProjectStructure(dir))

	settings, err := ReadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://studio.test", settings.Service.BaseURL)
}

func TestReadSettings_ParsesDurations(t *testing.T) {
	dir := t.TempDir()
	path := SettingsPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("sync:\n  debounce: 250ms\n  saved_decay: 2s\n"), 0644))

	settings, err := ReadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, settings.Sync.Debounce)
	assert.Equal(t, 2*time.Second, settings.Sync.SavedDecay)
	assert.Equal(t, 10*time.Second, settings.Service.RequestTimeout, "unset values keep defaults")
}

func TestReadSettings_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitProjectStructure(dir))
	t.Setenv("STUDIO_SERVICE_URL", "http://override.test")
	t.Setenv("STUDIO_SYNC_DEBOUNCE", "500ms")

	settings, err := ReadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://override.test", settings.Service.BaseURL)
	assert.Equal(t, 500*time.Millisecond, settings.Sync.Debounce)
}

func TestReadSettings_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFile), []byte("STUDIO_SERVER_ADDR=:9999\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("STUDIO_SERVER_ADDR") })

	settings, err := ReadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9999", settings.Server.Addr)
}

func TestReadSettings_InvalidEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STUDIO_SYNC_DEBOUNCE", "not-a-duration")

	_, err := ReadSettings(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestReadSettings_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := SettingsPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("service: [unterminated"), 0644))

	_, err := ReadSettings(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings YAML")
}
