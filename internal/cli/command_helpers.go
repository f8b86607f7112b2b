package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/fieldsync"
	"github.com/pluqqy/pluqqy-studio/pkg/files"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
)

// CommandContext resolves the settings and the content service a command
// works with
type CommandContext struct {
	Dir       string
	Settings  *models.Settings
	service   content.Service
	validated bool
}

// NewCommandContext creates a command context rooted at dir
func NewCommandContext(dir string) *CommandContext {
	return &CommandContext{Dir: dir}
}

// ValidateProject ensures the workspace is initialized
func (c *CommandContext) ValidateProject() error {
	if c.validated {
		return nil
	}

	if _, err := os.Stat(filepath.Join(c.Dir, files.StudioDir)); os.IsNotExist(err) {
		return fmt.Errorf("no %s directory found. Run 'studio init' first", files.StudioDir)
	}

	c.validated = true
	return nil
}

// LoadSettings reads the settings once and caches them
func (c *CommandContext) LoadSettings() (*models.Settings, error) {
	if c.Settings != nil {
		return c.Settings, nil
	}

	settings, err := files.ReadSettings(c.Dir)
	if err != nil {
		return nil, err
	}

	c.Settings = settings
	return settings, nil
}

// Service returns the content service client described by the settings
func (c *CommandContext) Service() (content.Service, error) {
	if c.service != nil {
		return c.service, nil
	}

	settings, err := c.LoadSettings()
	if err != nil {
		return nil, err
	}
	if settings.Service.BaseURL == "" {
		return nil, fmt.Errorf("no content service configured; set service.base_url or STUDIO_SERVICE_URL")
	}

	c.service = content.NewClient(settings.Service.BaseURL, content.StaticToken(settings.Service.Token))
	return c.service, nil
}

// SetService overrides the content service, mainly for tests
func (c *CommandContext) SetService(svc content.Service) {
	c.service = svc
}

// RequestContext bounds one request by the configured timeout
func (c *CommandContext) RequestContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := models.DefaultSettings().Service.RequestTimeout
	if c.Settings != nil && c.Settings.Service.RequestTimeout > 0 {
		timeout = c.Settings.Service.RequestTimeout
	}
	return context.WithTimeout(parent, timeout)
}

// SessionOptions describes a studio session for projectID
func (c *CommandContext) SessionOptions(projectID string, entry session.EntryChannel, prompt string) session.Options {
	opts := session.Options{ProjectID: projectID, Entry: entry, Prompt: prompt}
	if c.Settings != nil {
		opts.RequestTimeout = c.Settings.Service.RequestTimeout
	}
	return opts
}

// SyncOptions returns the field controller timing from the settings
func (c *CommandContext) SyncOptions() []fieldsync.Option {
	timing := fieldsync.DefaultTiming()
	if c.Settings != nil {
		if d := c.Settings.Sync.Debounce; d > 0 {
			timing.Debounce = d
		}
		if d := c.Settings.Sync.SavedDecay; d > 0 {
			timing.SavedDecay = d
		}
		if d := c.Settings.Service.RequestTimeout; d > 0 {
			timing.RequestTimeout = d
		}
	}
	return []fieldsync.Option{fieldsync.WithTiming(timing)}
}
