package models

import "time"

// Settings represents the application configuration
type Settings struct {
	Service ServiceSettings `yaml:"service" envPrefix:"STUDIO_SERVICE_"`
	Sync    SyncSettings    `yaml:"sync" envPrefix:"STUDIO_SYNC_"`
	Server  ServerSettings  `yaml:"server" envPrefix:"STUDIO_SERVER_"`
	UI      UISettings      `yaml:"ui" envPrefix:"STUDIO_UI_"`
}

// ServiceSettings locates the remote content service
type ServiceSettings struct {
	BaseURL        string        `yaml:"base_url" env:"URL"`
	Token          string        `yaml:"token,omitempty" env:"TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

// SyncSettings controls field synchronization timing
type SyncSettings struct {
	Debounce   time.Duration `yaml:"debounce" env:"DEBOUNCE"`
	SavedDecay time.Duration `yaml:"saved_decay" env:"SAVED_DECAY"`
}

// ServerSettings configures the development content service
type ServerSettings struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Database string `yaml:"database" env:"DATABASE"`
	Token    string `yaml:"token,omitempty" env:"TOKEN"`
}

// UISettings controls UI preferences
type UISettings struct {
	LogFile string `yaml:"log_file" env:"LOG_FILE"`
}

// DefaultSettings returns the default configuration
func DefaultSettings() *Settings {
	return &Settings{
		Service: ServiceSettings{
			BaseURL:        "http://localhost:8088",
			RequestTimeout: 10 * time.Second,
		},
		Sync: SyncSettings{
			Debounce:   1000 * time.Millisecond,
			SavedDecay: 1200 * time.Millisecond,
		},
		Server: ServerSettings{
			Addr:     ":8088",
			Database: "studio.db",
		},
		UI: UISettings{
			LogFile: "studio.log",
		},
	}
}
