package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonsync/internal/errors"
)

// Config represents the complete configuration for jsonsync
type Config struct {
	History  HistoryConfig  `yaml:"history"`
	Versions VersionsConfig `yaml:"versions"`
	Format   FormatConfig   `yaml:"format"`
	Extract  ExtractConfig  `yaml:"extract"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// HistoryConfig controls the operation log
type HistoryConfig struct {
	MaxEntries    int `yaml:"max_entries" validate:"min=1,max=1000"`
	PreviewLength int `yaml:"preview_length" validate:"min=1"`
}

// VersionsConfig controls the undo log
type VersionsConfig struct {
	MaxEntries       int     `yaml:"max_entries" validate:"min=1,max=1000"`
	MajorChangeRatio float64 `yaml:"major_change_ratio" validate:"gt=0"`
}

// FormatConfig controls the indented JSON view
type FormatConfig struct {
	Indent string `yaml:"indent" validate:"required,indent"`
}

// ExtractConfig bounds the fragment extraction fallback
type ExtractConfig struct {
	MaxInputBytes int `yaml:"max_input_bytes" validate:"min=1"`
}

// StoreConfig controls session persistence
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
	Session string `yaml:"session" validate:"required"`
}

// LogConfig controls logging output
type LogConfig struct {
	Level      string `yaml:"level" validate:"omitempty,loglevel"`
	Format     string `yaml:"format" validate:"omitempty,logformat"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
}

const (
	DefaultHistoryMaxEntries  = 30
	DefaultPreviewLength      = 40
	DefaultVersionsMaxEntries = 20
	DefaultMajorChangeRatio   = 0.3
	DefaultIndent             = "  "
	DefaultMaxInputBytes      = 1 << 20
	DefaultSessionName        = "default"
	DefaultLogLevel           = "warn"
	DefaultLogFormat          = "console"
	DefaultLogMaxSizeMB       = 10
	DefaultLogMaxBackups      = 3
	defaultStoreFileName      = "sessions.db"
	defaultStoreDirectoryName = "jsonsync"
)

var configNames = []string{".jsonsync.yml", ".jsonsync.yaml", "jsonsync.yml", "jsonsync.yaml"}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		History: HistoryConfig{
			MaxEntries:    DefaultHistoryMaxEntries,
			PreviewLength: DefaultPreviewLength,
		},
		Versions: VersionsConfig{
			MaxEntries:       DefaultVersionsMaxEntries,
			MajorChangeRatio: DefaultMajorChangeRatio,
		},
		Format: FormatConfig{
			Indent: DefaultIndent,
		},
		Extract: ExtractConfig{
			MaxInputBytes: DefaultMaxInputBytes,
		},
		Store: StoreConfig{
			Enabled: false,
			Path:    DefaultStorePath(),
			Session: DefaultSessionName,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}

// DefaultStorePath returns the session database location under the user's
// config directory, or the working directory when that is unknown.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return defaultStoreFileName
	}
	return filepath.Join(dir, defaultStoreDirectoryName, defaultStoreFileName)
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks every section against its constraints
func (c *Config) Validate() error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "disabled":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "json":
			return true
		default:
			return false
		}
	})

	// Indentation may only contain spaces and tabs.
	_ = validate.RegisterValidation("indent", func(fl validator.FieldLevel) bool {
		return strings.Trim(fl.Field().String(), " \t") == ""
	})

	if err := validate.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("%s failed on '%s'", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return errors.NewConfigError("invalid configuration: "+strings.Join(messages, "; "), err)
		}
		return errors.NewConfigError("invalid configuration", err)
	}
	return nil
}

// CLIOverrides holds command line values that take precedence over the
// config file. Zero values leave the file value in place.
type CLIOverrides struct {
	Indent      string
	LogLevel    string
	LogFile     string
	StorePath   string
	Session     string
	EnableStore bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Indent != "" {
		cfg.Format.Indent = cli.Indent
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFile != "" {
		cfg.Log.File = cli.LogFile
	}
	if cli.StorePath != "" {
		cfg.Store.Path = cli.StorePath
	}
	if cli.Session != "" {
		cfg.Store.Session = cli.Session
	}
	// A boolean flag can only switch persistence on.
	if cli.EnableStore {
		cfg.Store.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
