package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brandonhon/catbar/pkg/platform"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

type Config struct {
	General   General   `yaml:"general"`
	Store     Store     `yaml:"store"`
	UI        UI        `yaml:"ui"`
	Animation Animation `yaml:"animation"`
	Backup    Backup    `yaml:"backup"`
	Export    Export    `yaml:"export"`
}

type General struct {
	Editor     string `yaml:"editor"`
	Verbose    bool   `yaml:"verbose"`
	DryRun     bool   `yaml:"dry_run"`
	AutoBackup bool   `yaml:"auto_backup"`
	AuditLog   bool   `yaml:"audit_log"`
}

// Store selects the category store driver.
type Store struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type UI struct {
	Width       int               `yaml:"width"`
	LinesPerRow int               `yaml:"lines_per_row"`
	ColorScheme string            `yaml:"color_scheme"`
	Mouse       bool              `yaml:"mouse"`
	KeyBindings map[string]string `yaml:"key_bindings"`
}

// Animation tunes the row springs. RowHeight is in spring units and maps
// to UI.LinesPerRow terminal lines.
type Animation struct {
	RowHeight float64 `yaml:"row_height"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
	FPS       int     `yaml:"fps"`
}

type Backup struct {
	Directory       string `yaml:"directory"`
	MaxBackups      int    `yaml:"max_backups"`
	RetentionDays   int    `yaml:"retention_days"`
	CompressionType string `yaml:"compression_type"`
}

type Export struct {
	DefaultFormat string `yaml:"default_format"`
}

func DefaultConfig() *Config {
	return &Config{
		General: General{
			Editor:     getDefaultEditor(),
			AutoBackup: true,
			AuditLog:   true,
		},
		Store: Store{
			Driver: "file",
		},
		UI: UI{
			Width:       32,
			LinesPerRow: 2,
			ColorScheme: "auto",
			Mouse:       true,
			KeyBindings: map[string]string{
				"create": "n",
				"rename": "r",
				"menu":   "m",
				"copy":   "y",
			},
		},
		Animation: Animation{
			RowHeight: 80,
			Stiffness: 500,
			Damping:   32,
			FPS:       60,
		},
		Backup: Backup{
			MaxBackups:      10,
			RetentionDays:   30,
			CompressionType: "gzip",
		},
		Export: Export{
			DefaultFormat: "yaml",
		},
	}
}

func getDefaultEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	return "nano"
}

// Path returns the location of the configuration file.
func Path() string {
	return filepath.Join(platform.New().GetConfigDir(), configFileName)
}

// Load reads the configuration file, writing the defaults on first run.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads path, creating it with defaults when missing. Values
// absent from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := cfg.SaveTo(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	return c.SaveTo(Path())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// StorePath is the configured store location or the platform default.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return platform.New().DefaultStorePath(c.Store.Driver)
}

// BackupDir is the configured backup directory or one under the data dir.
func (c *Config) BackupDir() string {
	if c.Backup.Directory != "" {
		return c.Backup.Directory
	}
	return filepath.Join(platform.New().GetDataDir(), "backups")
}
